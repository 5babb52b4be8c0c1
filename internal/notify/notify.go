// Package notify emails a digest of newly available earlier slots.
package notify

import (
	"context"
	"log/slog"

	"github.com/example/slotwatch/internal/snapshot"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Error is a failed notification. It never fails a run.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "notify: " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

type Dispatcher struct {
	Renderer Renderer
	Sender   Sender
	Log      *slog.Logger
}

// Notify renders and sends diff once. An empty diff sends nothing.
func (d *Dispatcher) Notify(ctx context.Context, diff snapshot.Diff) (bool, error) {
	if diff.Empty() {
		return false, nil
	}
	msg, err := d.Renderer.Render(diff)
	if err != nil {
		return false, &Error{Err: err}
	}
	if err := d.Sender.Send(ctx, msg); err != nil {
		return false, &Error{Err: err}
	}

	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification sent", "cities", len(diff))
	return true, nil
}
