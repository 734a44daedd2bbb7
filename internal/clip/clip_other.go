//go:build !darwin && !windows && !linux

package clip

import "log/slog"

// New returns a no-op backend; there is no clipboard binding on this platform.
func New() Backend {
	slog.Warn("no clipboard support on this platform, running headless")
	return &headlessBackend{}
}
