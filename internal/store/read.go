package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.klb.dev/pastestack/internal/history"
)

// Get reconstructs the event with the given id, including its items and
// payloads. Returns history.ErrNotFound if the id is not retained.
func (s *Store) Get(ctx context.Context, id int64) (history.StoredEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, content_hash FROM clipboard_events WHERE id = ?
	`, id)

	var ev history.StoredEvent
	if err := row.Scan(&ev.ID, &ev.Timestamp, &ev.Hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return history.StoredEvent{}, fmt.Errorf("event %d: %w", id, history.ErrNotFound)
		}
		return history.StoredEvent{}, &history.StorageError{Op: "read event", Err: err}
	}

	events := []history.StoredEvent{ev}
	if err := s.loadItems(ctx, events); err != nil {
		return history.StoredEvent{}, err
	}
	return events[0], nil
}

// Recent returns up to n retained events, newest first.
//
// Returns an empty slice (not nil) when there is nothing to return.
func (s *Store) Recent(ctx context.Context, n int) ([]history.StoredEvent, error) {
	events := []history.StoredEvent{}
	if n <= 0 {
		return events, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, content_hash
		FROM clipboard_events
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, &history.StorageError{Op: "query events", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var ev history.StoredEvent
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.Hash); err != nil {
			return nil, &history.StorageError{Op: "scan event", Err: err}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &history.StorageError{Op: "iterate events", Err: err}
	}

	if err := s.loadItems(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of retained events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clipboard_events`).Scan(&n); err != nil {
		return 0, &history.StorageError{Op: "count events", Err: err}
	}
	return n, nil
}

// itemBatch bounds the ids bound in one IN list. SQLite caps host
// parameters per statement (999 on older builds).
var itemBatch = 500

// loadItems fills in the items and payloads of events in place. Items keep
// insertion order, as do payloads within an item. Items without payloads
// are kept.
func (s *Store) loadItems(ctx context.Context, events []history.StoredEvent) error {
	index := make(map[int64]int, len(events))
	for i, ev := range events {
		index[ev.ID] = i
	}
	for lo := 0; lo < len(events); lo += itemBatch {
		hi := min(lo+itemBatch, len(events))
		if err := s.loadItemBatch(ctx, events, index, events[lo:hi]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadItemBatch(ctx context.Context, events []history.StoredEvent, index map[int64]int, batch []history.StoredEvent) error {
	args := make([]any, len(batch))
	for i, ev := range batch {
		args[i] = ev.ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")

	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.event_id, t.id, t.type, t.data, t.size
		FROM clipboard_items i
		LEFT JOIN clipboard_types t ON t.item_id = i.id
		WHERE i.event_id IN (`+placeholders+`)
		ORDER BY i.event_id ASC, i.id ASC, t.id ASC
	`, args...)
	if err != nil {
		return &history.StorageError{Op: "query items", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID, eventID int64
			typeID, size    sql.NullInt64
			typ             sql.NullString
			data            []byte
		)
		if err := rows.Scan(&itemID, &eventID, &typeID, &typ, &data, &size); err != nil {
			return &history.StorageError{Op: "scan item", Err: err}
		}

		ev := &events[index[eventID]]
		if n := len(ev.Items); n == 0 || ev.Items[n-1].ID != itemID {
			ev.Items = append(ev.Items, history.StoredItem{ID: itemID, EventID: eventID})
		}
		if !typeID.Valid {
			continue
		}

		if size.Int64 != int64(len(data)) {
			return &history.StorageError{
				Op:  "read payload",
				Err: fmt.Errorf("payload %d: stored size %d does not match %d data bytes", typeID.Int64, size.Int64, len(data)),
			}
		}
		if data == nil {
			data = []byte{}
		}

		it := &ev.Items[len(ev.Items)-1]
		it.Payloads = append(it.Payloads, history.StoredPayload{
			ID:      typeID.Int64,
			ItemID:  itemID,
			Payload: history.NewPayload(typ.String, data),
		})
	}
	if err := rows.Err(); err != nil {
		return &history.StorageError{Op: "iterate items", Err: err}
	}
	return nil
}
