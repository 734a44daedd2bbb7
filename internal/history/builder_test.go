package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an Inserter that keeps what it was given.
type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Insert(_ context.Context, e Event) (Result, error) {
	if r.err != nil {
		return Result{}, r.err
	}
	r.events = append(r.events, e)
	return Result{Outcome: OutcomeStored, ID: int64(len(r.events)), Hash: e.Hash()}, nil
}

func clockAt(unix int64) BuilderOption {
	return WithClock(func() time.Time { return time.Unix(unix, 500_000_000) })
}

func TestBuilderStates(t *testing.T) {
	b := NewBuilder()
	assert.Equal(t, StateIdle, b.State())

	b.Start()
	assert.Equal(t, StateEventOpen, b.State())

	b.StartItem()
	assert.Equal(t, StateItemOpen, b.State())

	b.Discard()
	assert.Equal(t, StateIdle, b.State())
	assert.Equal(t, "idle", b.State().String())
}

func TestBuilderScenarioTwoPayloads(t *testing.T) {
	ins := &recorder{}
	b := NewBuilder(clockAt(1700000000))

	b.Start()
	b.StartItem()
	require.NoError(t, b.AddType("plain-text", []byte("hello")))
	require.NoError(t, b.AddType("html", []byte("<b>hello</b>")))

	res, err := b.Finalize(context.Background(), ins)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStored, res.Outcome)
	assert.Equal(t, StateIdle, b.State())

	require.Len(t, ins.events, 1)
	e := ins.events[0]
	assert.Equal(t, int64(1700000000), e.Timestamp, "seconds resolution")
	require.Len(t, e.Items, 1)
	assert.Equal(t, 5, e.Items[0].Payloads[0].Size())
	assert.Equal(t, len("<b>hello</b>"), e.Items[0].Payloads[1].Size())
}

func TestBuilderImplicitOpen(t *testing.T) {
	ins := &recorder{}
	b := NewBuilder()

	require.NoError(t, b.AddType("a", []byte("1")))
	assert.Equal(t, StateItemOpen, b.State())
	b.StartItem()
	require.NoError(t, b.AddType("b", []byte("2")))

	_, err := b.Finalize(context.Background(), ins)
	require.NoError(t, err)
	require.Len(t, ins.events[0].Items, 2)
	assert.Equal(t, []string{"a"}, ins.events[0].Items[0].Types())
	assert.Equal(t, []string{"b"}, ins.events[0].Items[1].Types())
}

func TestBuilderFinalizeIdleIsNoop(t *testing.T) {
	ins := &recorder{err: errors.New("must not be called")}
	res, err := NewBuilder().Finalize(context.Background(), ins)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, res.Outcome)
}

func TestBuilderStartDiscardsUnfinished(t *testing.T) {
	ins := &recorder{}
	b := NewBuilder()

	require.NoError(t, b.AddType("stale", []byte("x")))
	b.Start()
	require.NoError(t, b.AddType("fresh", []byte("y")))

	_, err := b.Finalize(context.Background(), ins)
	require.NoError(t, err)
	require.Len(t, ins.events[0].Items, 1)
	assert.Equal(t, []string{"fresh"}, ins.events[0].Items[0].Types())
}

func TestBuilderDoubleStartItemLeavesOnlyEmptyItem(t *testing.T) {
	ins := &recorder{}
	b := NewBuilder()

	b.Start()
	b.StartItem()
	b.StartItem()

	res, err := b.Finalize(context.Background(), ins)
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmpty, res.Outcome)
	assert.Empty(t, ins.events, "all-empty event must not reach the store")
	assert.Equal(t, StateIdle, b.State())
}

func TestBuilderDropsEmptyItems(t *testing.T) {
	ins := &recorder{}
	b := NewBuilder()

	b.StartItem()
	b.StartItem()
	require.NoError(t, b.AddType("t", []byte("x")))
	b.StartItem()

	_, err := b.Finalize(context.Background(), ins)
	require.NoError(t, err)
	require.Len(t, ins.events[0].Items, 1)
	assert.Equal(t, ins.events[0], b.Finalized())
}

func TestBuilderEmptyType(t *testing.T) {
	b := NewBuilder()
	assert.ErrorIs(t, b.AddType("", []byte("x")), ErrEmptyType)
	assert.Equal(t, StateIdle, b.State())
}

func TestBuilderResetsOnInsertError(t *testing.T) {
	fault := &StorageError{Op: "insert event", Err: errors.New("disk I/O error")}
	b := NewBuilder()
	require.NoError(t, b.AddType("t", []byte("x")))

	_, err := b.Finalize(context.Background(), &recorder{err: fault})
	assert.True(t, IsStorageFault(err))
	assert.Equal(t, StateIdle, b.State())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "stored", OutcomeStored.String())
	assert.Equal(t, "duplicate", OutcomeDuplicate.String())
	assert.Equal(t, "empty", OutcomeEmpty.String())
	assert.Equal(t, "none", OutcomeNone.String())
}

func TestStorageErrorMessage(t *testing.T) {
	err := &StorageError{Op: "prune", Err: errors.New("locked")}
	assert.Equal(t, "storage: prune: locked", err.Error())
	assert.False(t, IsStorageFault(errors.New("plain")))
}
