// Package model implements the observable task entities and the ordered
// collection that owns them. All methods must be called from a single
// goroutine (the UI event loop); backend round-trips are handed to a
// Dispatcher, which runs them elsewhere and applies their results back on
// that goroutine.
package model

// Topic is a typed publish/subscribe channel.
// The zero value is ready to use.
type Topic[E any] struct {
	handlers []*Subscription
	fns      map[*Subscription]func(E)
}

// Subscription is a handle returned by Subscribe.
type Subscription struct {
	cancel func()
}

// Unsubscribe stops delivery to the handler. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// Subscribe registers fn and returns its subscription.
func (t *Topic[E]) Subscribe(fn func(E)) *Subscription {
	if t.fns == nil {
		t.fns = make(map[*Subscription]func(E))
	}
	sub := &Subscription{}
	sub.cancel = func() { t.remove(sub) }
	t.handlers = append(t.handlers, sub)
	t.fns[sub] = fn
	return sub
}

// Publish delivers e to every handler in subscription order. Handlers
// added or removed while publishing take effect for the next event, except
// that a handler removed mid-publish is not called.
func (t *Topic[E]) Publish(e E) {
	snapshot := make([]*Subscription, len(t.handlers))
	copy(snapshot, t.handlers)
	for _, sub := range snapshot {
		if fn, ok := t.fns[sub]; ok {
			fn(e)
		}
	}
}

// Len returns the number of active subscriptions.
func (t *Topic[E]) Len() int {
	return len(t.handlers)
}

func (t *Topic[E]) remove(sub *Subscription) {
	for i, h := range t.handlers {
		if h == sub {
			t.handlers = append(t.handlers[:i], t.handlers[i+1:]...)
			break
		}
	}
	delete(t.fns, sub)
}

// Unsubscribe cancels every subscription in subs.
func Unsubscribe(subs ...*Subscription) {
	for _, s := range subs {
		s.Unsubscribe()
	}
}
