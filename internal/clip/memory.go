package clip

import (
	"fmt"
	"sync"
)

// Memory is an in-process clipboard. It supports any number of items and
// type tags, and can be told to refuse particular types or fail reads.
// Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	count   int64
	items   []Item
	reject  map[string]bool
	readErr error
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{reject: make(map[string]bool)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) ChangeCount() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, nil
}

func (m *Memory) Read() ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, m.readErr)
	}
	if len(m.items) == 0 {
		return nil, nil
	}
	return cloneItems(m.items), nil
}

// Write clears the clipboard, then writes items in order, stopping at the
// first rejected type. Items written before the rejection stay on the
// clipboard.
func (m *Memory) Write(items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	m.count++

	for _, it := range items {
		var out Item
		for _, p := range it.Payloads {
			if m.reject[p.Type] {
				if len(out.Payloads) > 0 {
					m.items = append(m.items, out)
				}
				return &RejectedError{Type: p.Type}
			}
			out.Payloads = append(out.Payloads, clonePayload(p))
		}
		m.items = append(m.items, out)
	}
	return nil
}

// Copy replaces the clipboard contents as a user copy would.
func (m *Memory) Copy(items ...Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = cloneItems(items)
	m.count++
}

// Touch advances the change count without changing the contents, as some
// platforms do when an application re-announces the same data.
func (m *Memory) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
}

// Reject makes subsequent writes of typ fail.
func (m *Memory) Reject(typ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reject[typ] = true
}

// FailReads makes Read return err (wrapped in ErrUnavailable) until called
// again with nil.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

func (m *Memory) Close() {}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		ps := make([]Payload, len(it.Payloads))
		for j, p := range it.Payloads {
			ps[j] = clonePayload(p)
		}
		out[i] = Item{Payloads: ps}
	}
	return out
}

func clonePayload(p Payload) Payload {
	return Payload{Type: p.Type, Data: append([]byte(nil), p.Data...)}
}
