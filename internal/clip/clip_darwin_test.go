//go:build darwin

package clip

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Overwrites the user's pasteboard, so it only runs on request.
func TestDarwinPasteboardRoundTrip(t *testing.T) {
	if os.Getenv("PASTESTACK_PASTEBOARD_TEST") == "" {
		t.Skip("set PASTESTACK_PASTEBOARD_TEST=1 to write the real pasteboard")
	}
	b := New()
	defer b.Close()

	before, err := b.ChangeCount()
	require.NoError(t, err)

	want := multiItemCopy()
	require.NoError(t, b.Write(want))

	after, err := b.ChangeCount()
	require.NoError(t, err)
	assert.Greater(t, after, before)

	got, err := b.Read()
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		for _, p := range want[i].Payloads {
			assert.Contains(t, got[i].Payloads, p, "item %d", i)
		}
	}
}
