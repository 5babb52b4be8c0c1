package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultMailjetURL = "https://api.mailjet.com"

// Mailjet sends messages through the Mailjet v3.1 send API.
type Mailjet struct {
	hc      *http.Client
	baseURL string
	token   string

	From Address
	To   Address
	// CustomID tags every message for Mailjet's event tracking.
	CustomID string
}

type Address struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

// NewMailjet returns a sender. token is sent as-is after "Basic ".
func NewMailjet(baseURL, token, from, to string) *Mailjet {
	return &Mailjet{
		hc:       &http.Client{Timeout: 15 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		From:     Address{Email: from, Name: "Driving times"},
		To:       Address{Email: to, Name: "Anon"},
		CustomID: "driving_test_times",
	}
}

type mailjetMessage struct {
	From     Address   `json:"From"`
	To       []Address `json:"To"`
	Subject  string    `json:"Subject"`
	CustomID string    `json:"CustomID,omitempty"`
	HTMLPart string    `json:"HTMLPart"`
	TextPart string    `json:"TextPart"`
}

type mailjetRequest struct {
	Messages []mailjetMessage `json:"Messages"`
}

func (m *Mailjet) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(mailjetRequest{Messages: []mailjetMessage{{
		From:     m.From,
		To:       []Address{m.To},
		Subject:  msg.Subject,
		CustomID: m.CustomID,
		HTMLPart: msg.HTML,
		TextPart: msg.Text,
	}}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v3.1/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+m.token)

	res, err := m.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("mailjet returned status %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
