// Package message defines the local control protocol spoken between the
// pastestack CLI and a running watch daemon.
//
// All messages are newline-delimited JSON. Each message is exactly one line:
// <json>\n. A connection carries one request and one response.
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

const (
	TypeRestore        Type = "RESTORE"
	TypeStatus         Type = "STATUS"
	TypeOK             Type = "OK"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeError          Type = "ERROR"
)

// Error codes carried in ERROR responses so the CLI can map them back to
// the sentinel errors it knows.
const (
	CodeNotFound   = "not_found"
	CodeRejected   = "rejected"
	CodeStorage    = "storage"
	CodeBadRequest = "bad_request"
)

// EventInfo summarises one stored event.
type EventInfo struct {
	ID        int64     `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Hash      string    `json:"hash" yaml:"hash"`
	Items     int       `json:"items" yaml:"items"`
	Types     []string  `json:"types,omitempty" yaml:"types,omitempty"`
	Summary   string    `json:"summary" yaml:"summary"`
}

// StatusInfo describes a running daemon.
// Instance is a random ID assigned when the daemon starts, so a client can
// tell a restarted daemon from the one it talked to before.
type StatusInfo struct {
	PID         int       `json:"pid" yaml:"pid"`
	Instance    string    `json:"instance,omitempty" yaml:"instance,omitempty"`
	Backend     string    `json:"backend" yaml:"backend"`
	DB          string    `json:"db" yaml:"db"`
	Driver      string    `json:"driver" yaml:"driver"`
	Interval    string    `json:"interval" yaml:"interval"`
	MaxRetained int       `json:"max_retained" yaml:"max_retained"`
	Retained    int       `json:"retained" yaml:"retained"`
	Stored      int64     `json:"stored" yaml:"stored"`
	Duplicates  int64     `json:"duplicates" yaml:"duplicates"`
	LastID      int64     `json:"last_id,omitempty" yaml:"last_id,omitempty"`
	LastAt      time.Time `json:"last_at,omitzero" yaml:"last_at,omitempty"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// RESTORE
	ID int64 `json:"id,omitempty"`

	// OK in reply to RESTORE
	Event *EventInfo `json:"event,omitempty"`

	// STATUS_RESPONSE
	Status *StatusInfo `json:"status,omitempty"`

	// ERROR
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"` // e.g. the refused type tag
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Errorf builds an ERROR message.
func Errorf(code, format string, args ...any) *Message {
	return &Message{Type: TypeError, Code: code, Error: fmt.Sprintf(format, args...)}
}
