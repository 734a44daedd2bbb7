// Package wire frames control messages as newline-delimited JSON over a
// net.Conn. Each line is one message:
//
//	<json>\n
package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.klb.dev/pastestack/internal/message"
)

// MaxMessageSize caps a single line, newline excluded.
const MaxMessageSize = 1 << 20

const writeTimeout = 5 * time.Second

// ErrTooLarge is returned by ReadMsg for a line longer than MaxMessageSize.
var ErrTooLarge = errors.New("wire: message too large")

// Conn reads and writes framed messages on one connection.
type Conn struct {
	conn net.Conn
	sc   *bufio.Scanner
}

// New wraps conn.
func New(conn net.Conn) *Conn {
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), MaxMessageSize+1)
	return &Conn{conn: conn, sc: sc}
}

// SetReadDeadline bounds the next reads to d from now. Zero clears it.
func (c *Conn) SetReadDeadline(d time.Duration) {
	_ = c.conn.SetReadDeadline(deadline(d))
}

func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// WriteMsg writes msg as a single line.
func (c *Conn) WriteMsg(msg *message.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if len(raw) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(raw))
	}

	_ = c.conn.SetWriteDeadline(deadline(writeTimeout))
	defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()
	_, err = c.conn.Write(append(raw, '\n'))
	return err
}

// ReadMsg reads the next line and decodes it. A connection closed between
// messages yields io.EOF.
func (c *Conn) ReadMsg() (*message.Message, error) {
	if !c.sc.Scan() {
		err := c.sc.Err()
		switch {
		case err == nil:
			return nil, io.EOF
		case errors.Is(err, bufio.ErrTooLong):
			return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, MaxMessageSize)
		}
		return nil, err
	}
	line := c.sc.Bytes()
	if len(line) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(line))
	}
	return message.Decode(line)
}
