// Package restore pushes stored clipboard events back onto the platform
// clipboard.
package restore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.klb.dev/pastestack/internal/clip"
	"go.klb.dev/pastestack/internal/history"
)

// Getter loads one stored event. *store.Store implements it.
type Getter interface {
	Get(ctx context.Context, id int64) (history.StoredEvent, error)
}

// Restorer writes stored events to a clipboard backend.
type Restorer struct {
	events  Getter
	backend clip.Backend
}

// New returns a Restorer reading from events and writing to backend.
func New(events Getter, backend clip.Backend) *Restorer {
	return &Restorer{events: events, backend: backend}
}

// Restore loads event id and writes it to the clipboard. A missing id yields
// history.ErrNotFound.
func (r *Restorer) Restore(ctx context.Context, id int64) (history.StoredEvent, error) {
	ev, err := r.events.Get(ctx, id)
	if err != nil {
		return history.StoredEvent{}, fmt.Errorf("restore %d: %w", id, err)
	}
	if err := r.Apply(ev.Event()); err != nil {
		return ev, fmt.Errorf("restore %d: %w", id, err)
	}
	slog.Info("clipboard restored", "id", id, "items", len(ev.Items), "backend", r.backend.Name())
	return ev, nil
}

// Apply replaces the clipboard with ev, one clipboard item per event item.
// If the platform refuses a payload the write stops there and the returned
// error wraps the *clip.RejectedError naming its type; the clipboard may
// hold whatever was written before it.
func (r *Restorer) Apply(ev history.Event) error {
	err := r.backend.Write(ToClip(ev))
	if err == nil {
		return nil
	}
	var rej *clip.RejectedError
	if errors.As(err, &rej) {
		slog.Warn("clipboard refused payload, restore incomplete", "type", rej.Type, "backend", r.backend.Name())
		return fmt.Errorf("write clipboard: %w", err)
	}
	return fmt.Errorf("write clipboard: %w: %w", clip.ErrUnavailable, err)
}

// ToClip converts an event into the platform representation.
func ToClip(ev history.Event) []clip.Item {
	out := make([]clip.Item, len(ev.Items))
	for i, it := range ev.Items {
		ps := make([]clip.Payload, len(it.Payloads))
		for j, p := range it.Payloads {
			ps[j] = clip.Payload{Type: p.Type, Data: p.Data}
		}
		out[i] = clip.Item{Payloads: ps}
	}
	return out
}
