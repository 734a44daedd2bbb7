package capture

import (
	"context"
	"log/slog"

	"go.klb.dev/pastestack/internal/history"
)

const previewLen = 120

// LogEvent logs a clipboard event at INFO (id, item count, types) and DEBUG
// (text preview up to 120 chars, or byte size for binary payloads).
func LogEvent(msg string, id int64, ev history.Event) {
	var types []string
	for _, it := range ev.Items {
		types = append(types, it.Types()...)
	}
	slog.Info(msg, "id", id, "items", len(ev.Items), "types", types)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, it := range ev.Items {
		for _, p := range it.Payloads {
			if history.IsText(p.Type) {
				preview := []rune(string(p.Data))
				if len(preview) > previewLen {
					preview = append(preview[:previewLen], '…')
				}
				slog.Debug("clipboard payload", "item", i, "type", p.Type, "preview", string(preview))
			} else {
				slog.Debug("clipboard payload", "item", i, "type", p.Type, "size_bytes", p.Size())
			}
		}
	}
}
