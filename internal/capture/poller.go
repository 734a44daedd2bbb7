// Package capture watches the platform clipboard and records each new copy
// into the history store.
//
// A Poller asks the backend for its change token on a fixed interval and hands
// every changed snapshot to a Handler. The Recorder is the Handler that turns a
// snapshot into a history.Event and commits it.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.klb.dev/pastestack/internal/clip"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 500 * time.Millisecond

// ErrStop may be returned by a Handler to end Run without an error.
var ErrStop = errors.New("capture: stop")

// Handler receives a non-empty clipboard snapshot each time the change token
// advances. It runs on the polling goroutine; polling resumes when it returns.
type Handler func(ctx context.Context, items []clip.Item) error

// Poller detects clipboard changes by polling the backend's change token.
type Poller struct {
	backend  clip.Backend
	interval time.Duration
}

// NewPoller returns a Poller for backend. An interval of zero or less selects
// DefaultInterval.
func NewPoller(backend clip.Backend, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{backend: backend, interval: interval}
}

// Interval returns the effective poll interval.
func (p *Poller) Interval() time.Duration { return p.interval }

// Run polls until ctx is cancelled or h returns an error. The token observed
// when Run starts is the baseline, so whatever is already on the clipboard is
// not captured.
//
// Platform failures are logged and the cycle is skipped. A handler returning
// ErrStop ends Run with nil; any other handler error is returned as is.
func (p *Poller) Run(ctx context.Context, h Handler) error {
	last, err := p.backend.ChangeCount()
	haveBaseline := err == nil
	if err != nil {
		slog.Warn("clipboard change count failed", "backend", p.backend.Name(), "err", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		token, err := p.backend.ChangeCount()
		if err != nil {
			slog.Warn("clipboard change count failed", "backend", p.backend.Name(), "err", err)
			if err := p.sleep(ctx); err != nil {
				return err
			}
			continue
		}
		if !haveBaseline || token == last {
			last, haveBaseline = token, true
			if err := p.sleep(ctx); err != nil {
				return err
			}
			continue
		}
		last = token

		items, err := p.backend.Read()
		if err != nil {
			slog.Warn("clipboard read failed", "backend", p.backend.Name(), "token", token, "err", err)
			if err := p.sleep(ctx); err != nil {
				return err
			}
			continue
		}
		if len(items) == 0 {
			slog.Debug("clipboard changed but holds no items", "token", token)
			continue
		}

		if err := h(ctx, items); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

func (p *Poller) sleep(ctx context.Context) error {
	t := time.NewTimer(p.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
