package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/pastestack/internal/history"
)

func openTest(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "clipboard.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func textEvent(ts int64, text string) history.Event {
	return history.Event{Timestamp: ts, Items: []history.Item{{Payloads: []history.Payload{
		history.NewPayload("public.utf8-plain-text", []byte(text)),
	}}}}
}

func TestOpenPragmas(t *testing.T) {
	for _, driver := range []string{DriverCGO, DriverPure} {
		t.Run(driver, func(t *testing.T) {
			s := openTest(t, WithDriver(driver))
			assert.Equal(t, driver, s.Driver())
			require.NoError(t, s.verifyPragma("journal_mode", "wal"))
			require.NoError(t, s.verifyPragma("foreign_keys", "1"))
			require.NoError(t, s.verifyPragma("busy_timeout", "5000"))
			require.NoError(t, s.verifyPragma("user_version", fmt.Sprint(currentSchemaVersion)))
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "x.db"), WithDriver("postgres"))
	require.Error(t, err)
	assert.True(t, history.IsStorageFault(err))
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "clipboard.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipboard.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clipboard.db")

	s, err := Open(path)
	require.NoError(t, err)
	res, err := s.Insert(ctx, textEvent(1, "persist"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "persist", string(got.Items[0].Payloads[0].Data))
}

func TestWithMaxRetainedDefault(t *testing.T) {
	assert.Equal(t, DefaultMaxRetained, openTest(t, WithMaxRetained(0)).MaxRetained())
	assert.Equal(t, 7, openTest(t, WithMaxRetained(7)).MaxRetained())
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}
