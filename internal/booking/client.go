// Package booking is a client for the driving-test booking service.
package booking

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

// DefaultBaseURL is the public booking endpoint.
const DefaultBaseURL = "https://fp.trafikverket.se/boka"

// Client talks to the booking service's search and occasion endpoints.
// It needs the caller's identity token and the two query templates.
type Client struct {
	hc        *http.Client
	baseURL   string
	token     string
	templates Templates
}

// New returns a Client. A nil hc gets a plain client; per-request deadlines
// come from the caller's context.
func New(baseURL, token string, templates Templates, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		hc:        hc,
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		templates: templates,
	}
}

// SearchLocations returns every location the service knows about.
func (c *Client) SearchLocations(ctx context.Context) ([]LocationRecord, error) {
	q, err := c.templates.location()
	if err != nil {
		return nil, err
	}
	q["socialSecurityNumber"] = c.token

	var res searchResponse
	if err := c.post(ctx, "/search-information", q, &res); err != nil {
		return nil, fmt.Errorf("search locations: %w", err)
	}
	return res.Data.Locations, nil
}

// Occasions returns the groups of bookable occasions at a location from start onwards.
func (c *Client) Occasions(ctx context.Context, id LocationID, start time.Time) ([]OccasionGroup, error) {
	q, err := c.templates.timeslot()
	if err != nil {
		return nil, err
	}
	q["socialSecurityNumber"] = c.token

	obq, ok := q["occasionBundleQuery"].(map[string]any)
	if !ok {
		obq = map[string]any{}
		q["occasionBundleQuery"] = obq
	}
	obq["startDate"] = start.Format(time.RFC3339Nano)
	obq["locationId"] = id

	var res occasionsResponse
	if err := c.post(ctx, "/occasion-bundles", q, &res); err != nil {
		return nil, fmt.Errorf("occasions for location %s: %w", id, err)
	}
	return res.Data, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	status, b, err := c.do(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &StatusError{Code: status, Body: truncate(string(b), 512)}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return res.StatusCode, b, nil
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("booking service returned status %d", e.Code)
	}
	return fmt.Sprintf("booking service returned status %d: %s", e.Code, e.Body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
