package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_FlushEmpty(t *testing.T) {
	d := NewDispatcher(context.Background())
	assert.Nil(t, d.Flush())
}

func TestDispatcher_RunsRequestsInOrder(t *testing.T) {
	d := NewDispatcher(context.Background())
	var ran, applied []int
	for i := range 3 {
		d.Dispatch(func(context.Context) func() {
			ran = append(ran, i)
			return func() { applied = append(applied, i) }
		})
	}
	assert.Equal(t, 3, d.Pending())

	batch, ok := d.Flush()().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 3)
	assert.Nil(t, d.Flush(), "queue drained")

	var msgs []MsgApply
	for _, cmd := range batch {
		msgs = append(msgs, cmd().(MsgApply))
	}
	assert.Equal(t, []int{0, 1, 2}, ran)
	assert.Empty(t, applied, "completions wait for the event loop")

	// Delivered out of order, applied in dispatch order.
	d.apply(msgs[2])
	d.apply(msgs[1])
	assert.Empty(t, applied)
	d.apply(msgs[0])
	assert.Equal(t, []int{0, 1, 2}, applied)
	assert.Equal(t, 0, d.Pending())
}

func TestDispatcher_WaitsForPreviousRequest(t *testing.T) {
	d := NewDispatcher(context.Background())
	d.Dispatch(func(context.Context) func() { return nil })
	d.Dispatch(func(context.Context) func() { return nil })
	batch := d.Flush()().(tea.BatchMsg)

	second := make(chan tea.Msg, 1)
	go func() { second <- batch[1]() }()

	select {
	case <-second:
		t.Fatal("second request ran before the first")
	default:
	}

	first := batch[0]().(MsgApply)
	msg := (<-second).(MsgApply)
	assert.Equal(t, uint64(0), first.Seq)
	assert.Equal(t, uint64(1), msg.Seq)
}

func TestDispatcher_NilApply(t *testing.T) {
	d := NewDispatcher(nil) //nolint:staticcheck // nil falls back to Background
	d.Dispatch(func(ctx context.Context) func() {
		assert.NotNil(t, ctx)
		return nil
	})

	msg := d.Flush()().(MsgApply)
	d.apply(msg)
	assert.Equal(t, 0, d.Pending())
}
