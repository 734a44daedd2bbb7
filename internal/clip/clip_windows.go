//go:build windows

package clip

// #cgo LDFLAGS: -luser32
//
// #include <windows.h>
//
// static DWORD pastestack_sequence(void) {
//     return GetClipboardSequenceNumber();
// }
import "C"

import (
	"fmt"
	"log/slog"

	"golang.design/x/clipboard"
)

// windowsBackend reads formats through golang.design/x/clipboard and takes
// the change token from the window station's clipboard sequence number.
type windowsBackend struct{}

// New returns the Windows clipboard backend, or a headless no-op backend
// when the clipboard cannot be opened.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return &headlessBackend{}
	}
	return &windowsBackend{}
}

func (b *windowsBackend) Name() string { return "Windows clipboard" }

// ChangeCount returns GetClipboardSequenceNumber, which is zero only when
// the process lacks clipboard access.
func (b *windowsBackend) ChangeCount() (int64, error) {
	seq := C.pastestack_sequence()
	if seq == 0 {
		return 0, fmt.Errorf("%w: no clipboard sequence number", ErrUnavailable)
	}
	return int64(seq), nil
}

func (b *windowsBackend) Read() ([]Item, error) {
	return readFormats(), nil
}

func (b *windowsBackend) Write(items []Item) error {
	return writeFormats(items)
}

func (b *windowsBackend) Close() {}
