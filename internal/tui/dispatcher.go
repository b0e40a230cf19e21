package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/tasklist/internal/model"
)

// Dispatcher implements model.Dispatcher on top of tea.Cmd.
//
// Requests run one at a time, in dispatch order, on bubbletea's command
// goroutines. Their completions come back as MsgApply and are applied by
// the Model in the same order, regardless of the order bubbletea delivers
// them in. Dispatch and Flush must only be called from the event loop.
type Dispatcher struct {
	ctx     context.Context
	tail    chan struct{} // Closed when the last dispatched request returns
	ready   map[uint64]func()
	queue   []tea.Cmd
	nextSeq uint64
	applied uint64
}

// NewDispatcher creates a Dispatcher whose requests run with ctx.
func NewDispatcher(ctx context.Context) *Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Dispatcher{
		ctx:   ctx,
		ready: make(map[uint64]func()),
	}
}

// Dispatch queues req. The request starts once the command returned by the
// next Flush is executed and every earlier request has returned.
func (d *Dispatcher) Dispatch(req model.Request) {
	seq := d.nextSeq
	d.nextSeq++
	prev := d.tail
	done := make(chan struct{})
	d.tail = done

	ctx := d.ctx
	d.queue = append(d.queue, func() tea.Msg {
		if prev != nil {
			<-prev
		}
		apply := req(ctx)
		close(done)
		return MsgApply{Seq: seq, Apply: apply}
	})
}

// Flush returns a command running every request queued since the last
// Flush, or nil if there is none.
func (d *Dispatcher) Flush() tea.Cmd {
	if len(d.queue) == 0 {
		return nil
	}
	cmds := d.queue
	d.queue = nil
	return tea.Batch(cmds...)
}

// Pending returns the number of requests dispatched but not yet applied.
func (d *Dispatcher) Pending() int {
	return int(d.nextSeq - d.applied)
}

// apply runs msg's completion, together with any later completions it was
// holding back, in dispatch order.
func (d *Dispatcher) apply(msg MsgApply) {
	if msg.Seq < d.applied {
		return
	}
	d.ready[msg.Seq] = msg.Apply
	for {
		fn, ok := d.ready[d.applied]
		if !ok {
			return
		}
		delete(d.ready, d.applied)
		d.applied++
		if fn != nil {
			fn()
		}
	}
}

// Ensure Dispatcher implements model.Dispatcher.
var _ model.Dispatcher = (*Dispatcher)(nil)
