package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.klb.dev/pastestack/internal/clip"
	"go.klb.dev/pastestack/internal/history"
	"go.klb.dev/pastestack/internal/store"
)

// Stats summarises what a Recorder has done since it was created.
type Stats struct {
	Stored     int64
	Duplicates int64
	Empty      int64
	LastID     int64
	LastAt     time.Time
}

// Recorder turns clipboard snapshots into history events. Handle is meant to
// be passed to Poller.Run; Stats may be read from any goroutine.
type Recorder struct {
	ins     history.Inserter
	builder *history.Builder

	mu    sync.Mutex
	stats Stats
}

// NewRecorder returns a Recorder committing to ins.
func NewRecorder(ins history.Inserter, opts ...history.BuilderOption) *Recorder {
	return &Recorder{ins: ins, builder: history.NewBuilder(opts...)}
}

// Handle builds one event from items and commits it. Storage faults are
// returned; a failed retention pass after a successful commit is logged and
// the event counts as stored.
func (r *Recorder) Handle(ctx context.Context, items []clip.Item) error {
	r.builder.Start()
	for _, it := range items {
		r.builder.StartItem()
		for _, p := range it.Payloads {
			if err := r.builder.AddType(p.Type, p.Data); err != nil {
				slog.Warn("skipping clipboard payload", "err", err, "size_bytes", len(p.Data))
			}
		}
	}

	res, err := r.builder.Finalize(ctx, r.ins)

	var pe *store.PruneError
	if errors.As(err, &pe) {
		slog.Error("history retention failed", "event", pe.EventID, "err", pe.Err)
		err = nil
	}
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	r.mu.Lock()
	switch res.Outcome {
	case history.OutcomeStored:
		r.stats.Stored++
		r.stats.LastID = res.ID
		r.stats.LastAt = time.Now()
	case history.OutcomeDuplicate:
		r.stats.Duplicates++
	case history.OutcomeEmpty:
		r.stats.Empty++
	}
	r.mu.Unlock()

	switch res.Outcome {
	case history.OutcomeStored:
		LogEvent("clipboard event stored", res.ID, r.builder.Finalized())
		if res.Pruned > 0 {
			slog.Debug("history pruned", "removed", res.Pruned)
		}
	case history.OutcomeDuplicate:
		slog.Debug("clipboard event already retained", "hash", res.Hash)
	case history.OutcomeEmpty:
		slog.Debug("clipboard event had no payloads")
	}
	return nil
}

// Stats returns a snapshot of the recorder counters.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// ToEvent converts a clipboard snapshot into an unsaved event stamped at t.
// Empty items are kept; the builder decides what to drop.
func ToEvent(t time.Time, items []clip.Item) history.Event {
	ev := snapshotEvent(items)
	ev.Timestamp = t.Unix()
	return ev
}

func snapshotEvent(items []clip.Item) history.Event {
	var ev history.Event
	for _, it := range items {
		var hi history.Item
		for _, p := range it.Payloads {
			if p.Type == "" {
				continue
			}
			hi.Payloads = append(hi.Payloads, history.NewPayload(p.Type, p.Data))
		}
		ev.Items = append(ev.Items, hi)
	}
	return ev
}
