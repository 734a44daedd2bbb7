//go:build !windows

package ipc

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// socketPath prefers the per-user runtime dir. The shared temp dir fallback
// carries the uid so two users on one host never collide.
func socketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pastestack.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("pastestack-%d.sock", os.Getuid()))
}

// removeStale deletes a socket file left by a crashed daemon. Anything that
// is not a socket is left alone so Listen fails loudly instead.
func removeStale(path string) {
	fi, err := os.Lstat(path)
	if err != nil || fi.Mode().Type() != os.ModeSocket {
		return
	}
	_ = os.Remove(path)
}

func listenIPC(path string) (net.Listener, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	return ln, nil
}

func dialIPC(path string) (net.Conn, error) {
	return net.Dial("unix", path)
}
