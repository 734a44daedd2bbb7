//go:build linux || windows

package clip

import (
	"fmt"

	"golang.design/x/clipboard"
)

// Type tags for the formats golang.design/x/clipboard can carry.
const (
	TypeText = "text/plain"
	TypePNG  = "image/png"
)

// readFormats returns the current text and image contents as a single item,
// or nil when neither format is present.
func readFormats() []Item {
	var it Item
	if text := clipboard.Read(clipboard.FmtText); text != nil {
		it.Payloads = append(it.Payloads, Payload{Type: TypeText, Data: text})
	}
	if img := clipboard.Read(clipboard.FmtImage); img != nil {
		it.Payloads = append(it.Payloads, Payload{Type: TypePNG, Data: img})
	}
	if len(it.Payloads) == 0 {
		return nil
	}
	return []Item{it}
}

// writeFormats writes each payload in order. The library replaces the whole
// clipboard on every write, so each payload supersedes the previous one and
// only one format survives.
func writeFormats(items []Item) error {
	for _, it := range items {
		for _, p := range it.Payloads {
			switch p.Type {
			case TypeText:
				clipboard.Write(clipboard.FmtText, p.Data)
			case TypePNG:
				clipboard.Write(clipboard.FmtImage, p.Data)
			default:
				return &RejectedError{Type: p.Type, Err: fmt.Errorf("unsupported type")}
			}
		}
	}
	return nil
}
