package store

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/pastestack/internal/history"
)

func TestGetRoundTripsExactly(t *testing.T) {
	for _, driver := range []string{DriverCGO, DriverPure} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			s := openTest(t, WithDriver(driver))

			binary := []byte{0x00, 0xff, 0x10, 0x00, 0x7f}
			want := history.Event{Timestamp: 1700000000, Items: []history.Item{
				{Payloads: []history.Payload{
					history.NewPayload("public.utf8-plain-text", []byte("a.txt")),
					history.NewPayload("public.file-url", []byte("file:///a.txt")),
				}},
				{Payloads: []history.Payload{
					history.NewPayload("public.png", binary),
				}},
			}}

			res, err := s.Insert(ctx, want)
			require.NoError(t, err)

			got, err := s.Get(ctx, res.ID)
			require.NoError(t, err)
			assert.Equal(t, res.ID, got.ID)
			assert.Equal(t, want.Hash(), got.Hash)
			assert.Equal(t, want, got.Event())
			assert.Equal(t, got.Hash, got.Event().Hash())

			for _, it := range got.Items {
				assert.Equal(t, got.ID, it.EventID)
				for _, p := range it.Payloads {
					assert.Equal(t, it.ID, p.ItemID)
					assert.Positive(t, p.ID)
				}
			}
			assert.True(t, bytes.Equal(binary, got.Items[1].Payloads[0].Data))
		})
	}
}

func TestGetNotFound(t *testing.T) {
	_, err := openTest(t).Get(context.Background(), 12345)
	assert.ErrorIs(t, err, history.ErrNotFound)
	assert.False(t, history.IsStorageFault(err))
}

func TestRecentOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	for i, text := range []string{"one", "two", "three"} {
		_, err := s.Insert(ctx, textEvent(int64(i+1), text))
		require.NoError(t, err)
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "three", string(recent[0].Items[0].Payloads[0].Data))
	assert.Equal(t, "two", string(recent[1].Items[0].Payloads[0].Data))

	none, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRecentEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	recent, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetDetectsSizeMismatch(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	res, err := s.Insert(ctx, textEvent(1, "hello"))
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE clipboard_types SET size = 99`)
	require.NoError(t, err)

	_, err = s.Get(ctx, res.ID)
	assert.True(t, history.IsStorageFault(err))
	assert.ErrorContains(t, err, "does not match")
}

// bulkEvents writes n one-payload events straight through SQL.
func bulkEvents(t *testing.T, s *Store, n int) {
	t.Helper()
	_, err := s.db.Exec(`
		WITH RECURSIVE seq(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM seq WHERE x < ?)
		INSERT INTO clipboard_events (timestamp, content_hash) SELECT x, printf('h%d', x) FROM seq
	`, n)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO clipboard_items (event_id) SELECT id FROM clipboard_events ORDER BY id`)
	require.NoError(t, err)
	_, err = s.db.Exec(`
		INSERT INTO clipboard_types (item_id, type, data, size)
		SELECT id, 'text/plain', CAST(printf('%d', event_id) AS BLOB), length(printf('%d', event_id))
		FROM clipboard_items
	`)
	require.NoError(t, err)
}

func TestRecentBeyondBindLimit(t *testing.T) {
	const n = 33000
	for _, driver := range []string{DriverCGO, DriverPure} {
		t.Run(driver, func(t *testing.T) {
			s := openTest(t, WithDriver(driver), WithMaxRetained(n))
			bulkEvents(t, s, n)

			events, err := s.Recent(context.Background(), n)
			require.NoError(t, err)
			require.Len(t, events, n)
			assert.Equal(t, int64(n), events[0].Timestamp)
			assert.Equal(t, int64(1), events[n-1].Timestamp)
			for _, ev := range []history.StoredEvent{events[0], events[n/2], events[n-1]} {
				require.Len(t, ev.Items, 1)
				require.Len(t, ev.Items[0].Payloads, 1)
				assert.Equal(t, strconv.FormatInt(ev.ID, 10), string(ev.Items[0].Payloads[0].Data))
			}
		})
	}
}

func TestRecentAcrossBatches(t *testing.T) {
	prev := itemBatch
	itemBatch = 2
	t.Cleanup(func() { itemBatch = prev })

	ctx := context.Background()
	s := openTest(t, WithMaxRetained(10))
	for i := range 5 {
		_, err := s.Insert(ctx, textEvent(int64(i+1), strconv.Itoa(i)))
		require.NoError(t, err)
	}

	events, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, events, 5)
	for i, ev := range events {
		want := strconv.Itoa(4 - i)
		require.Len(t, ev.Items, 1, "event %d", ev.ID)
		assert.Equal(t, want, string(ev.Items[0].Payloads[0].Data))
	}
}
