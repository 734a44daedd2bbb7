package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"go.klb.dev/pastestack/internal/capture"
	"go.klb.dev/pastestack/internal/clip"
	"go.klb.dev/pastestack/internal/config"
	"go.klb.dev/pastestack/internal/history"
	"go.klb.dev/pastestack/internal/message"
	"go.klb.dev/pastestack/internal/restore"
	"go.klb.dev/pastestack/internal/store"
)

// daemon answers IPC requests on behalf of a running watch loop.
type daemon struct {
	cfg      config.Config
	st       *store.Store
	backend  clip.Backend
	rec      *capture.Recorder
	restorer *restore.Restorer
	instance uuid.UUID
	started  time.Time
}

func newDaemon(cfg config.Config, st *store.Store, backend clip.Backend, rec *capture.Recorder) *daemon {
	return &daemon{
		cfg:      cfg,
		st:       st,
		backend:  backend,
		rec:      rec,
		restorer: restore.New(st, backend),
		instance: uuid.New(),
		started:  time.Now(),
	}
}

func (d *daemon) handle(ctx context.Context, req *message.Message) *message.Message {
	switch req.Type {
	case message.TypeStatus:
		return d.status(ctx)
	case message.TypeRestore:
		return d.restore(ctx, req.ID)
	}
	return nil
}

func (d *daemon) status(ctx context.Context) *message.Message {
	n, err := d.st.Count(ctx)
	if err != nil {
		return message.Errorf(message.CodeStorage, "%v", err)
	}
	stats := d.rec.Stats()
	return &message.Message{
		Type: message.TypeStatusResponse,
		Status: &message.StatusInfo{
			PID:         os.Getpid(),
			Instance:    d.instance.String(),
			Backend:     d.backend.Name(),
			DB:          d.cfg.DB,
			Driver:      d.st.Driver(),
			Interval:    d.cfg.Interval.String(),
			MaxRetained: d.st.MaxRetained(),
			Retained:    n,
			Stored:      stats.Stored,
			Duplicates:  stats.Duplicates,
			LastID:      stats.LastID,
			LastAt:      stats.LastAt,
			StartedAt:   d.started,
		},
	}
}

func (d *daemon) restore(ctx context.Context, id int64) *message.Message {
	if id <= 0 {
		return message.Errorf(message.CodeBadRequest, "invalid event id %d", id)
	}
	ev, err := d.restorer.Restore(ctx, id)
	if err == nil {
		info := eventInfo(ev)
		return &message.Message{Type: message.TypeOK, Event: &info}
	}

	slog.Warn("ipc restore failed", "id", id, "err", err)
	var rej *clip.RejectedError
	switch {
	case errors.Is(err, history.ErrNotFound):
		return message.Errorf(message.CodeNotFound, "%v", err)
	case errors.As(err, &rej):
		m := message.Errorf(message.CodeRejected, "%v", err)
		m.Detail = rej.Type
		return m
	case history.IsStorageFault(err):
		return message.Errorf(message.CodeStorage, "%v", err)
	}
	return message.Errorf("", "%v", err)
}

// responseError converts an ERROR response back into the error the direct
// code path would have returned.
func responseError(resp *message.Message) error {
	if resp.Type != message.TypeError {
		return nil
	}
	switch resp.Code {
	case message.CodeNotFound:
		return &remoteError{msg: resp.Error, is: history.ErrNotFound}
	case message.CodeRejected:
		return &clip.RejectedError{Type: resp.Detail, Err: errors.New(resp.Error)}
	}
	return errors.New(resp.Error)
}

// remoteError carries a daemon's message while matching a local sentinel.
type remoteError struct {
	msg string
	is  error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.is }
