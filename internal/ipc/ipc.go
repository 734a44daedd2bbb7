// Package ipc provides the local control channel between pastestack CLI
// commands and a running "pastestack watch" daemon.
//
// The daemon listens on a Unix domain socket (a named pipe on Windows). Each
// connection carries one request message and one response, framed by package
// wire. CLI sub-commands probe for the socket and act on the store directly
// when it is absent.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"go.klb.dev/pastestack/internal/message"
	"go.klb.dev/pastestack/internal/wire"
)

const requestTimeout = 10 * time.Second

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux:   $XDG_RUNTIME_DIR/pastestack.sock, else $TMPDIR/pastestack-<uid>.sock
//   - macOS:   $TMPDIR/pastestack-<uid>.sock
//   - Windows: \\.\pipe\pastestack
//
// $PASTESTACK_SOCKET overrides the path (a pipe name on Windows).
func SocketPath() string {
	if s := os.Getenv("PASTESTACK_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on the IPC
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := dialIPC(SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates and returns a net.Listener on the IPC socket path, removing
// any stale socket file first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	if IsRunning() {
		return nil, fmt.Errorf("another daemon is listening on %s", path)
	}
	removeStale(path)
	return listenIPC(path)
}

// Dial connects to the daemon's IPC socket.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}

// Handler answers one request.
type Handler func(ctx context.Context, req *message.Message) *message.Message

// Serve accepts connections on ln until it is closed, answering each with h.
func Serve(ctx context.Context, ln net.Listener, h Handler) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				slog.Warn("IPC accept failed", "err", err)
			}
			return
		}
		go ServeConn(ctx, conn, h)
	}
}

// ServeConn reads one request from conn, writes h's response, and closes conn.
func ServeConn(ctx context.Context, conn net.Conn, h Handler) {
	wc := wire.New(conn)
	defer wc.Close()

	wc.SetReadDeadline(requestTimeout)
	req, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("IPC read failed", "err", err)
		return
	}
	wc.SetReadDeadline(0)

	resp := h(ctx, req)
	if resp == nil {
		resp = message.Errorf(message.CodeBadRequest, "unsupported request %q", req.Type)
	}
	if err := wc.WriteMsg(resp); err != nil {
		slog.Debug("IPC write failed", "err", err)
	}
}

// Request sends req over conn and waits for the response. conn is closed
// before returning.
func Request(conn net.Conn, req *message.Message) (*message.Message, error) {
	wc := wire.New(conn)
	defer wc.Close()

	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("ipc send: %w", err)
	}
	wc.SetReadDeadline(requestTimeout)
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("ipc receive: %w", err)
	}
	return resp, nil
}
