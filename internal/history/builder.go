package history

import (
	"context"
	"time"
)

// Outcome describes what happened to an event handed to the store.
type Outcome int

const (
	// OutcomeNone means there was no event to hand over.
	OutcomeNone Outcome = iota
	// OutcomeStored means the event was committed.
	OutcomeStored
	// OutcomeDuplicate means a retained event already has the same hash;
	// nothing was written.
	OutcomeDuplicate
	// OutcomeEmpty means the event had no payloads and was discarded.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeEmpty:
		return "empty"
	default:
		return "none"
	}
}

// Result is returned by Inserter.Insert and Builder.Finalize.
type Result struct {
	Outcome Outcome
	// ID is the assigned event id when Outcome is OutcomeStored.
	ID   int64
	Hash string
	// Pruned is the number of events removed by retention after the insert.
	Pruned int64
}

// Inserter commits events. *store.Store implements it.
type Inserter interface {
	Insert(ctx context.Context, ev Event) (Result, error)
}

// State is the builder's position in the capture cycle.
type State int

const (
	StateIdle State = iota
	StateEventOpen
	StateItemOpen
)

func (s State) String() string {
	switch s {
	case StateEventOpen:
		return "event-open"
	case StateItemOpen:
		return "item-open"
	default:
		return "idle"
	}
}

// Builder accumulates one in-progress Event during a capture cycle.
// It is not safe for concurrent use; give each capture loop its own.
//
// Items that end up with no payloads are dropped when sealed. An event whose
// items were all empty is discarded by Finalize with OutcomeEmpty.
type Builder struct {
	now   func() time.Time
	state State
	event Event
	item  Item
	last  Event
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the wall clock used to stamp new events.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder returns an idle Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{now: time.Now}
	for _, o := range opts {
		o(b)
	}
	return b
}

// State returns the current builder state.
func (b *Builder) State() State { return b.state }

// Start opens a fresh event stamped with the current time, discarding any
// unfinished item or event.
func (b *Builder) Start() {
	b.event = Event{Timestamp: b.now().Unix()}
	b.item = Item{}
	b.state = StateEventOpen
}

// StartItem seals the in-progress item and opens a new empty one. It opens an
// event first when none is open.
func (b *Builder) StartItem() {
	if b.state == StateIdle {
		b.Start()
	} else {
		b.sealItem()
	}
	b.item = Item{}
	b.state = StateItemOpen
}

// AddType appends a payload to the open item, opening an item (and event) if
// needed. The data slice is retained, not copied.
func (b *Builder) AddType(typ string, data []byte) error {
	if typ == "" {
		return ErrEmptyType
	}
	if b.state != StateItemOpen {
		b.StartItem()
	}
	b.item.Payloads = append(b.item.Payloads, NewPayload(typ, data))
	return nil
}

// Finalize seals the open item and hands the event to ins. The builder is
// reset to idle whatever the outcome. With no event open it is a no-op.
func (b *Builder) Finalize(ctx context.Context, ins Inserter) (Result, error) {
	if b.state == StateIdle {
		return Result{Outcome: OutcomeNone}, nil
	}
	b.sealItem()
	ev := b.event
	b.reset()
	b.last = ev

	if len(ev.Items) == 0 {
		return Result{Outcome: OutcomeEmpty, Hash: ev.Hash()}, nil
	}
	return ins.Insert(ctx, ev)
}

// Finalized returns the event sealed by the most recent Finalize, with empty
// items already dropped. It is what the Inserter was given.
func (b *Builder) Finalized() Event { return b.last }

// Discard drops any in-progress event without storing it.
func (b *Builder) Discard() { b.reset() }

func (b *Builder) sealItem() {
	if b.state == StateItemOpen && !b.item.Empty() {
		b.event.Items = append(b.event.Items, b.item)
	}
	b.item = Item{}
	if b.state == StateItemOpen {
		b.state = StateEventOpen
	}
}

func (b *Builder) reset() {
	b.event = Event{}
	b.item = Item{}
	b.state = StateIdle
}
