package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/slotwatch/internal/notify"
	"github.com/example/slotwatch/internal/slots"
	"github.com/example/slotwatch/internal/snapshot"
)

var diff = snapshot.Diff{
	"Uppsala":    {slots.TimeSlot("2024-04-21 10:00")},
	"Södertälje": {slots.TimeSlot("2024-04-20 09:00"), slots.TimeSlot("2024-04-20 09:30")},
}

func TestRenderer_Render(t *testing.T) {
	msg, err := notify.Renderer{}.Render(diff)

	require.NoError(t, err)
	assert.Equal(t, notify.DefaultSubject, msg.Subject)
	assert.Equal(t, 3, strings.Count(msg.HTML, "<li>"))
	assert.Contains(t, msg.HTML, "<li>2024-04-20 09:30</li>")
	assert.Less(t, strings.Index(msg.HTML, "Södertälje"), strings.Index(msg.HTML, "Uppsala"))

	var text map[string][]string
	require.NoError(t, json.Unmarshal([]byte(msg.Text), &text))
	assert.Equal(t, []string{"2024-04-21 10:00"}, text["Uppsala"])
	assert.Contains(t, msg.Text, "\n    \"")
}

func TestRenderer_escapesCityNames(t *testing.T) {
	msg, err := notify.Renderer{Subject: "x"}.Render(snapshot.Diff{"<b>": {slots.TimeSlot("2024-01-01 10:00")}})

	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<b>")
	assert.Contains(t, msg.HTML, "&lt;b&gt;")
}

type recordingSender struct {
	sent []notify.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func TestDispatcher_emptyDiffIsNoop(t *testing.T) {
	s := &recordingSender{}
	d := notify.Dispatcher{Sender: s}

	sent, err := d.Notify(context.Background(), snapshot.Diff{})

	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, s.sent)
}

func TestDispatcher_sendsOnce(t *testing.T) {
	s := &recordingSender{}
	d := notify.Dispatcher{Sender: s}

	sent, err := d.Notify(context.Background(), diff)

	require.NoError(t, err)
	assert.True(t, sent)
	assert.Len(t, s.sent, 1)
}

func TestDispatcher_sendFailure(t *testing.T) {
	s := &recordingSender{err: errors.New("smtp down")}
	d := notify.Dispatcher{Sender: s}

	sent, err := d.Notify(context.Background(), diff)

	assert.False(t, sent)
	var ne *notify.Error
	require.ErrorAs(t, err, &ne)
	assert.ErrorContains(t, err, "smtp down")
}

func TestMailjet_Send(t *testing.T) {
	var got struct {
		Messages []struct {
			From     notify.Address
			To       []notify.Address
			Subject  string
			CustomID string
			HTMLPart string
			TextPart string
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3.1/send", r.URL.Path)
		assert.Equal(t, "Basic secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := notify.NewMailjet(srv.URL, "secret", "from@example.com", "to@example.com")
	err := m.Send(context.Background(), notify.Message{Subject: "s", HTML: "<p>h</p>", Text: "{}"})

	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	msg := got.Messages[0]
	assert.Equal(t, notify.Address{Email: "from@example.com", Name: "Driving times"}, msg.From)
	assert.Equal(t, []notify.Address{{Email: "to@example.com", Name: "Anon"}}, msg.To)
	assert.Equal(t, "driving_test_times", msg.CustomID)
	assert.Equal(t, "<p>h</p>", msg.HTMLPart)
	assert.Equal(t, "{}", msg.TextPart)
}

func TestMailjet_Send_rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ErrorMessage":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := notify.NewMailjet(srv.URL, "bad", "a@example.com", "b@example.com").Send(context.Background(), notify.Message{})

	assert.ErrorContains(t, err, "401")
}
