//go:build windows

package ipc

import (
	"net"

	"github.com/microsoft/go-winio"
)

const pipeName = `\\.\pipe\pastestack`

func socketPath() string { return pipeName }

// Named pipes vanish with their owner.
func removeStale(string) {}

func listenIPC(path string) (net.Listener, error) {
	return winio.ListenPipe(path, &winio.PipeConfig{
		// Owner and SYSTEM only.
		SecurityDescriptor: "D:P(A;;GA;;;OW)(A;;GA;;;SY)",
	})
}

func dialIPC(path string) (net.Conn, error) {
	return winio.DialPipe(path, nil)
}
