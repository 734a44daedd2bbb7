// Package history defines the clipboard history data model: an Event is one
// copy action, holding one or more Items, each expressed as one or more typed
// Payloads (the same object in several formats).
//
// Values built in memory carry no row identities. The Stored* types are what
// the store hands back after a successful commit; only they have IDs.
package history

import "time"

// Payload is a single (type tag, raw bytes) representation of an item.
type Payload struct {
	Type string
	Data []byte
}

// NewPayload returns a Payload holding data under the given type tag.
func NewPayload(typ string, data []byte) Payload {
	return Payload{Type: typ, Data: data}
}

// Size returns the payload length in bytes.
func (p Payload) Size() int { return len(p.Data) }

// Item is one selected object within a copy action.
type Item struct {
	Payloads []Payload
}

// Empty reports whether the item carries no payloads.
func (it Item) Empty() bool { return len(it.Payloads) == 0 }

// Types returns the payload type tags in order.
func (it Item) Types() []string {
	out := make([]string, len(it.Payloads))
	for i, p := range it.Payloads {
		out[i] = p.Type
	}
	return out
}

// Event is one clipboard copy action. Timestamp is in Unix seconds.
type Event struct {
	Timestamp int64
	Items     []Item
}

// Time returns the event timestamp as a time.Time.
func (e Event) Time() time.Time { return time.Unix(e.Timestamp, 0) }

// PayloadCount returns the total number of payloads across all items.
func (e Event) PayloadCount() int {
	n := 0
	for _, it := range e.Items {
		n += len(it.Payloads)
	}
	return n
}

// StoredPayload is a Payload that has been committed to the store.
type StoredPayload struct {
	ID     int64
	ItemID int64
	Payload
}

// StoredItem is an Item that has been committed to the store.
type StoredItem struct {
	ID       int64
	EventID  int64
	Payloads []StoredPayload
}

// Item returns the in-memory value without row identities.
func (s StoredItem) Item() Item {
	ps := make([]Payload, len(s.Payloads))
	for i, p := range s.Payloads {
		ps[i] = p.Payload
	}
	return Item{Payloads: ps}
}

// StoredEvent is an Event that has been committed to the store.
type StoredEvent struct {
	ID        int64
	Timestamp int64
	Hash      string
	Items     []StoredItem
}

// Event returns the in-memory value without row identities.
func (s StoredEvent) Event() Event {
	items := make([]Item, len(s.Items))
	for i, it := range s.Items {
		items[i] = it.Item()
	}
	return Event{Timestamp: s.Timestamp, Items: items}
}

// Time returns the event timestamp as a time.Time.
func (s StoredEvent) Time() time.Time { return time.Unix(s.Timestamp, 0) }
