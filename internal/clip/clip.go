// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the appropriate implementation:
//
//	clip_darwin.go  : macOS NSPasteboard via cgo, every item and type
//	clip_windows.go : Windows via golang.design/x/clipboard, token from
//	                  GetClipboardSequenceNumber
//	clip_linux.go   : X11/Wayland via golang.design/x/clipboard, token
//	                  advanced when the content changes
//	clip_other.go   : headless stub on every other platform
//
// Memory is an in-process backend with full multi-item support, used by tests
// and by "--backend memory".
package clip

import (
	"errors"
	"fmt"
)

// ErrUnavailable reports that the platform clipboard could not be reached.
var ErrUnavailable = errors.New("clipboard unavailable")

// Payload is one representation of a clipboard item under a type tag
// (a MIME type or a platform type identifier).
type Payload struct {
	Type string
	Data []byte
}

// Item is one clipboard slot holding the same object in several formats.
type Item struct {
	Payloads []Payload
}

// RejectedError reports that the platform refused to accept a payload.
type RejectedError struct {
	Type string
	Err  error
}

func (e *RejectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("clipboard rejected type %q: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("clipboard rejected type %q", e.Type)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// Backend is the interface that all platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ChangeCount returns an opaque counter that increases whenever the
	// clipboard contents change.
	ChangeCount() (int64, error)

	// Read returns the current clipboard contents grouped by item.
	// Returns nil, nil if the clipboard is empty or holds only unsupported types.
	Read() ([]Item, error)

	// Write clears the clipboard and then writes items in order. A payload
	// the platform refuses aborts the write with a *RejectedError; the
	// clipboard may be left partially written.
	Write(items []Item) error

	// Close releases any resources held by the backend.
	Close()
}

// Types returns the type tags of every payload across items, in order.
func Types(items []Item) []string {
	var out []string
	for _, it := range items {
		for _, p := range it.Payloads {
			out = append(out, p.Type)
		}
	}
	return out
}
