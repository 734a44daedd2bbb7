package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.klb.dev/pastestack/internal/history"
)

// PruneError reports a retention failure after an event was committed. The
// insert is not rolled back; EventID identifies the committed event.
type PruneError struct {
	EventID int64
	Err     error
}

func (e *PruneError) Error() string {
	return fmt.Sprintf("prune after event %d: %v", e.EventID, e.Err)
}

func (e *PruneError) Unwrap() error { return e.Err }

// Insert commits ev with all of its items and payloads, unless a retained
// event already has the same content hash, in which case nothing is written
// and the result is history.OutcomeDuplicate.
//
// After a successful commit the history is pruned to MaxRetained events. A
// pruning failure is returned as a *PruneError together with the committed
// result.
func (s *Store) Insert(ctx context.Context, ev history.Event) (history.Result, error) {
	for _, it := range ev.Items {
		for _, p := range it.Payloads {
			if p.Type == "" {
				return history.Result{}, fmt.Errorf("insert event: %w", history.ErrEmptyType)
			}
		}
	}

	hash := ev.Hash()
	res, err := s.insert(ctx, ev, hash)
	if err != nil || res.Outcome != history.OutcomeStored {
		return res, err
	}

	pruned, err := s.Prune(ctx)
	res.Pruned = pruned
	if err != nil {
		return res, &PruneError{EventID: res.ID, Err: err}
	}
	return res, nil
}

func (s *Store) insert(ctx context.Context, ev history.Event, hash string) (history.Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return history.Result{}, &history.StorageError{Op: "begin insert", Err: err}
	}
	defer tx.Rollback() // No-op if committed

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM clipboard_events WHERE content_hash = ?
	`, hash).Scan(&existing)
	if err != nil {
		return history.Result{}, &history.StorageError{Op: "check duplicate", Err: err}
	}
	if existing > 0 {
		return history.Result{Outcome: history.OutcomeDuplicate, Hash: hash}, nil
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO clipboard_events (timestamp, content_hash) VALUES (?, ?)
	`, ev.Timestamp, hash)
	if err != nil {
		return history.Result{}, &history.StorageError{Op: "insert event", Err: err}
	}
	eventID, err := result.LastInsertId()
	if err != nil {
		return history.Result{}, &history.StorageError{Op: "insert event: last insert id", Err: err}
	}

	if err := insertItems(ctx, tx, eventID, ev.Items); err != nil {
		return history.Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return history.Result{}, &history.StorageError{Op: "commit insert", Err: err}
	}

	return history.Result{Outcome: history.OutcomeStored, ID: eventID, Hash: hash}, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, eventID int64, items []history.Item) error {
	itemStmt, err := tx.PrepareContext(ctx, `INSERT INTO clipboard_items (event_id) VALUES (?)`)
	if err != nil {
		return &history.StorageError{Op: "prepare item insert", Err: err}
	}
	defer itemStmt.Close()

	typeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clipboard_types (item_id, type, data, size) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return &history.StorageError{Op: "prepare payload insert", Err: err}
	}
	defer typeStmt.Close()

	for _, it := range items {
		result, err := itemStmt.ExecContext(ctx, eventID)
		if err != nil {
			return &history.StorageError{Op: "insert item", Err: err}
		}
		itemID, err := result.LastInsertId()
		if err != nil {
			return &history.StorageError{Op: "insert item: last insert id", Err: err}
		}

		for _, p := range it.Payloads {
			data := p.Data
			if data == nil {
				// A nil slice binds as NULL.
				data = []byte{}
			}
			if _, err := typeStmt.ExecContext(ctx, itemID, p.Type, data, len(data)); err != nil {
				return &history.StorageError{Op: fmt.Sprintf("insert payload %q", p.Type), Err: err}
			}
		}
	}
	return nil
}

// Prune deletes all events except the MaxRetained most recent ones, ordered
// by timestamp and then by insertion order. Items and payloads go with their
// event. It returns the number of events removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM clipboard_events WHERE id NOT IN (
			SELECT id FROM clipboard_events
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		)
	`, s.maxRetained)
	if err != nil {
		return 0, &history.StorageError{Op: "prune", Err: err}
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, &history.StorageError{Op: "prune: rows affected", Err: err}
	}
	return n, nil
}
