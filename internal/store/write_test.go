package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/pastestack/internal/history"
)

func rowCounts(t *testing.T, s *Store) (events, items, types int) {
	t.Helper()
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM clipboard_events`).Scan(&events))
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM clipboard_items`).Scan(&items))
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM clipboard_types`).Scan(&types))
	return events, items, types
}

func TestInsertTwoPayloadScenario(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	res, err := s.Insert(ctx, history.Event{Timestamp: 10, Items: []history.Item{{Payloads: []history.Payload{
		history.NewPayload("plain-text", []byte("hello")),
		history.NewPayload("html", []byte("<b>hello</b>")),
	}}}})
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeStored, res.Outcome)
	assert.Positive(t, res.ID)

	recent, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, res.ID, recent[0].ID)
	assert.Equal(t, res.Hash, recent[0].Hash)

	ps := recent[0].Items[0].Payloads
	require.Len(t, ps, 2)
	assert.Equal(t, "plain-text", ps[0].Type)
	assert.Equal(t, 5, ps[0].Size())
	assert.Equal(t, "html", ps[1].Type)
	assert.Equal(t, len("<b>hello</b>"), ps[1].Size())

	var sizes []int
	rows, err := s.db.Query(`SELECT size FROM clipboard_types ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var n int
		require.NoError(t, rows.Scan(&n))
		sizes = append(sizes, n)
	}
	assert.Equal(t, []int{5, 12}, sizes)
}

func TestInsertDuplicateWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	first, err := s.Insert(ctx, textEvent(1, "same"))
	require.NoError(t, err)
	e1, i1, t1 := rowCounts(t, s)

	second, err := s.Insert(ctx, textEvent(2, "same"))
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeDuplicate, second.Outcome)
	assert.Zero(t, second.ID)
	assert.Equal(t, first.Hash, second.Hash)

	e2, i2, t2 := rowCounts(t, s)
	assert.Equal(t, []int{e1, i1, t1}, []int{e2, i2, t2})

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Timestamp, "original row untouched")
}

func TestInsertDuplicateIgnoresTypeOrder(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	a := history.Event{Timestamp: 1, Items: []history.Item{{Payloads: []history.Payload{
		history.NewPayload("a", []byte("1")), history.NewPayload("b", []byte("2")),
	}}}}
	b := history.Event{Timestamp: 2, Items: []history.Item{{Payloads: []history.Payload{
		history.NewPayload("b", []byte("2")), history.NewPayload("a", []byte("1")),
	}}}}

	_, err := s.Insert(ctx, a)
	require.NoError(t, err)
	res, err := s.Insert(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeDuplicate, res.Outcome)
}

func TestRetentionKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, WithMaxRetained(2))

	var ids []int64
	for i, text := range []string{"E1", "E2", "E3"} {
		res, err := s.Insert(ctx, textEvent(int64(i+1), text))
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)

	_, err = s.Get(ctx, ids[0])
	assert.ErrorIs(t, err, history.ErrNotFound)

	_, items, types := rowCounts(t, s)
	assert.Equal(t, 2, items, "pruned items cascade")
	assert.Equal(t, 2, types, "pruned payloads cascade")
}

func TestRetentionBoundManyEvents(t *testing.T) {
	ctx := context.Background()
	const retained, extra = 5, 4
	s := openTest(t, WithMaxRetained(retained))

	var ids []int64
	for i := range retained + extra {
		res, err := s.Insert(ctx, textEvent(int64(100+i), fmt.Sprintf("event %d", i)))
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, retained, n)

	for _, id := range ids[:extra] {
		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, history.ErrNotFound, "id %d", id)
	}
	for _, id := range ids[extra:] {
		_, err := s.Get(ctx, id)
		assert.NoError(t, err, "id %d", id)
	}
}

func TestRetentionTieBreaksByInsertion(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, WithMaxRetained(2))

	var ids []int64
	for _, text := range []string{"a", "b", "c"} {
		res, err := s.Insert(ctx, textEvent(5, text))
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, []int64{ids[2], ids[1]}, []int64{recent[0].ID, recent[1].ID})

	// A second pass is a no-op.
	pruned, err := s.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}

func TestRetentionByTimestampNotInsertion(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, WithMaxRetained(2))

	late, err := s.Insert(ctx, textEvent(30, "late"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, textEvent(10, "early"))
	require.NoError(t, err)
	mid, err := s.Insert(ctx, textEvent(20, "mid"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), mid.Pruned)

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{late.ID, mid.ID}, []int64{recent[0].ID, recent[1].ID})
}

func TestInsertEmptyTypeRejected(t *testing.T) {
	s := openTest(t)
	_, err := s.Insert(context.Background(), history.Event{Items: []history.Item{{Payloads: []history.Payload{
		history.NewPayload("", []byte("x")),
	}}}})
	assert.ErrorIs(t, err, history.ErrEmptyType)

	events, _, _ := rowCounts(t, s)
	assert.Zero(t, events)
}

func TestInsertEmptyShell(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	// Handed directly to the store, an event with one empty item is kept as
	// an event row and an item row with no payloads.
	res, err := s.Insert(ctx, history.Event{Timestamp: 1, Items: []history.Item{{}}})
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeStored, res.Outcome)

	events, items, types := rowCounts(t, s)
	assert.Equal(t, []int{1, 1, 0}, []int{events, items, types})

	got, err := s.Get(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Empty(t, got.Items[0].Payloads)
}

func TestInsertNilDataStoredEmpty(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	res, err := s.Insert(ctx, history.Event{Items: []history.Item{{Payloads: []history.Payload{
		history.NewPayload("public.data", nil),
	}}}})
	require.NoError(t, err)

	got, err := s.Get(ctx, res.ID)
	require.NoError(t, err)
	p := got.Items[0].Payloads[0]
	assert.NotNil(t, p.Data)
	assert.Zero(t, p.Size())
}

func TestInsertFaultLeavesHistoryIntact(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	before, err := s.Insert(ctx, textEvent(1, "kept"))
	require.NoError(t, err)

	_, err = s.db.Exec(`
		CREATE TRIGGER fail_payload BEFORE INSERT ON clipboard_types
		WHEN NEW.type = 'boom'
		BEGIN SELECT RAISE(ABORT, 'simulated disk fault'); END
	`)
	require.NoError(t, err)

	_, err = s.Insert(ctx, history.Event{Timestamp: 2, Items: []history.Item{
		{Payloads: []history.Payload{history.NewPayload("ok", []byte("1"))}},
		{Payloads: []history.Payload{history.NewPayload("boom", []byte("2"))}},
	}})
	require.Error(t, err)
	var se *history.StorageError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Op, "boom")

	events, items, types := rowCounts(t, s)
	assert.Equal(t, []int{1, 1, 1}, []int{events, items, types}, "partial rows rolled back")

	got, err := s.Get(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", string(got.Items[0].Payloads[0].Data))

	// The store stays usable.
	res, err := s.Insert(ctx, textEvent(3, "after"))
	require.NoError(t, err)
	assert.Equal(t, history.OutcomeStored, res.Outcome)
}

func TestPruneFailureKeepsInsert(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, WithMaxRetained(1))

	_, err := s.Insert(ctx, textEvent(1, "old"))
	require.NoError(t, err)

	_, err = s.db.Exec(`
		CREATE TRIGGER fail_prune BEFORE DELETE ON clipboard_events
		BEGIN SELECT RAISE(ABORT, 'simulated prune fault'); END
	`)
	require.NoError(t, err)

	res, err := s.Insert(ctx, textEvent(2, "new"))
	require.Error(t, err)

	var pe *PruneError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, res.ID, pe.EventID)
	assert.True(t, history.IsStorageFault(err))
	assert.Equal(t, history.OutcomeStored, res.Outcome)

	got, err := s.Get(ctx, res.ID)
	require.NoError(t, err, "committed insert survives the failed prune")
	assert.Equal(t, "new", string(got.Items[0].Payloads[0].Data))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsertCancelledContext(t *testing.T) {
	s := openTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Insert(ctx, textEvent(1, "x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || history.IsStorageFault(err))
}
