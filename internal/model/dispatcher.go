package model

import "context"

// Request performs a backend round-trip and returns a function that applies
// its outcome. The request itself runs off the event loop; the returned
// function always runs on it.
type Request func(ctx context.Context) (apply func())

// Dispatcher schedules requests. Dispatch must not block and must not call
// the apply function from within Dispatch unless the dispatcher is
// explicitly synchronous.
type Dispatcher interface {
	Dispatch(req Request)
}

// ImmediateDispatcher runs requests and their completions synchronously.
// It is meant for one-shot command-line operations where there is no event
// loop to return to.
type ImmediateDispatcher struct {
	Ctx context.Context
}

// Dispatch runs req and applies its outcome before returning.
func (d ImmediateDispatcher) Dispatch(req Request) {
	ctx := d.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if apply := req(ctx); apply != nil {
		apply()
	}
}
