//go:build linux

package clip

import (
	"bytes"
	"log/slog"
	"sync"

	"golang.design/x/clipboard"
)

// pollBackend serves X11 and Wayland, which offer no change counter to
// ask. ChangeCount reads the clipboard and advances a local counter
// whenever the contents differ from the previous call.
type pollBackend struct {
	mu       sync.Mutex
	count    int64
	lastText []byte
	lastImg  []byte
}

// New returns the clipboard backend, or a headless no-op backend if the display
// environment is unavailable (e.g. a headless server without X11 or Wayland).
// clipboard.Init is called here rather than in init() so that CLI sub-commands
// don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return &headlessBackend{}
	}
	b := &pollBackend{}
	b.lastText = clipboard.Read(clipboard.FmtText)
	b.lastImg = clipboard.Read(clipboard.FmtImage)
	return b
}

func (b *pollBackend) Name() string { return "Linux clipboard (poll)" }

func (b *pollBackend) ChangeCount() (int64, error) {
	text := clipboard.Read(clipboard.FmtText)
	img := clipboard.Read(clipboard.FmtImage)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !bytes.Equal(text, b.lastText) || !bytes.Equal(img, b.lastImg) {
		b.lastText = text
		b.lastImg = img
		b.count++
	}
	return b.count, nil
}

func (b *pollBackend) Read() ([]Item, error) {
	return readFormats(), nil
}

func (b *pollBackend) Write(items []Item) error {
	return writeFormats(items)
}

func (b *pollBackend) Close() {}
