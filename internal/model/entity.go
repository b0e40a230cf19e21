package model

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/runoshun/tasklist/internal/domain"
)

// ChangeEvent reports that some attributes of an entity changed.
type ChangeEvent struct {
	Entity *Entity
	Fields []string // Names of the changed fields (domain.Field*)
}

// Has reports whether field is among the changed fields.
func (e ChangeEvent) Has(field string) bool {
	return slices.Contains(e.Fields, field)
}

// ErrorEvent reports a failed backend round-trip.
type ErrorEvent struct {
	Err    error
	Entity *Entity
	Op     string // "create", "update" or "delete"
}

// Entity is a single observable task.
//
// Mutations are optimistic: local state changes and change notifications
// fire before the backend confirms. A failed round-trip publishes an
// ErrorEvent and leaves the optimistic state in place.
type Entity struct {
	collection *Collection
	repo       domain.TaskRepository
	dispatcher Dispatcher
	logger     domain.Logger

	changed   Topic[ChangeEvent]
	destroyed Topic[*Entity]
	synced    Topic[*Entity]
	failed    Topic[ErrorEvent]

	attrs   domain.Task
	pending domain.Patch // Saves issued while the create request is in flight
	onIdle  func()       // Run once no request is in flight

	cid        int
	seq        int // Insertion sequence, breaks order ties
	inflight   int
	creating   bool
	hasPending bool
	gone       bool
}

// CID returns the client-side identifier, stable before and after the
// backend assigns an ID.
func (e *Entity) CID() string {
	return fmt.Sprintf("c%d", e.cid)
}

// ID returns the backend ID (0 until the entity is persisted).
func (e *Entity) ID() int { return e.attrs.ID }

// Text returns the task text.
func (e *Entity) Text() string { return e.attrs.Task }

// IsDone returns the completion flag.
func (e *Entity) IsDone() bool { return e.attrs.IsDone }

// Order returns the sort key.
func (e *Entity) Order() int { return e.attrs.Order }

// IsNew returns true until the backend has assigned an ID.
func (e *Entity) IsNew() bool { return e.attrs.IsNew() }

// IsDestroyed returns true once Destroy has been called.
func (e *Entity) IsDestroyed() bool { return e.gone }

// Attributes returns a copy of the current attributes.
func (e *Entity) Attributes() domain.Task { return e.attrs }

// OnChange subscribes to attribute changes.
func (e *Entity) OnChange(fn func(ChangeEvent)) *Subscription {
	return e.changed.Subscribe(fn)
}

// OnDestroy subscribes to the destroy notification.
func (e *Entity) OnDestroy(fn func(*Entity)) *Subscription {
	return e.destroyed.Subscribe(fn)
}

// OnSync subscribes to successful backend round-trips.
func (e *Entity) OnSync(fn func(*Entity)) *Subscription {
	return e.synced.Subscribe(fn)
}

// OnError subscribes to failed backend round-trips.
func (e *Entity) OnError(fn func(ErrorEvent)) *Subscription {
	return e.failed.Subscribe(fn)
}

// ToggleDone flips the completion flag and persists it.
func (e *Entity) ToggleDone() error {
	return e.Save(domain.SetDone(!e.attrs.IsDone))
}

// Save merges p into the entity, notifies observers of the changed fields
// and persists the entity (create when new, update otherwise).
//
// Validation failures are returned synchronously and leave the entity
// untouched. Backend failures are reported asynchronously via OnError.
func (e *Entity) Save(p domain.Patch) error {
	if e.gone {
		return domain.ErrTaskNotFound
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Task != nil {
		text := strings.TrimSpace(*p.Task)
		p.Task = &text
	}
	if p.Order != nil && e.collection != nil {
		order := domain.ClampOrder(*p.Order, e.collection.maxOrder())
		p.Order = &order
	}

	from := e.attrs.Order
	changed := e.attrs.Apply(p)
	if e.collection != nil && slices.Contains(changed, domain.FieldOrder) {
		e.collection.moved(e, from)
	}
	if len(changed) > 0 {
		e.changed.Publish(ChangeEvent{Entity: e, Fields: changed})
	}

	e.persist(p)
	return nil
}

// MoveTo moves the entity to position index of its collection. The index is
// translated into the sort key of the entity currently at that position, so
// stored orders need not be contiguous. Indexes past the end move the entity
// last.
func (e *Entity) MoveTo(index int) error {
	if index < 0 {
		return domain.ErrInvalidOrder
	}
	if e.collection == nil || e.collection.Len() == 0 {
		return e.Save(domain.SetOrder(index))
	}
	target := e.collection.At(min(index, e.collection.Len()-1))
	return e.Save(domain.SetOrder(target.attrs.Order))
}

// Destroy deletes the entity from the backend, removes it from its
// collection and notifies its observers.
func (e *Entity) Destroy() {
	if e.gone {
		return
	}
	e.gone = true

	// A create still in flight deletes the new record once its ID arrives.
	if !e.creating && !e.attrs.IsNew() {
		e.remoteDelete()
	}
	if e.collection != nil {
		e.collection.remove(e)
	}
	e.destroyed.Publish(e)
}

func (e *Entity) persist(p domain.Patch) {
	switch {
	case e.creating:
		e.pending = e.pending.Union(p)
		e.hasPending = true
	case e.attrs.IsNew():
		e.create()
	default:
		e.update(p)
	}
}

func (e *Entity) create() {
	e.creating = true
	text, done := e.attrs.Task, e.attrs.IsDone
	body := domain.Patch{Task: &text, IsDone: &done}
	e.logger.Debug(0, "sync", fmt.Sprintf("create %s: %q", e.CID(), text))

	e.dispatch(func(ctx context.Context) func() {
		saved, err := e.repo.Create(ctx, body)
		return func() {
			e.creating = false
			if err != nil {
				e.hasPending = false
				e.pending = domain.Patch{}
				e.fail("create", err)
				return
			}
			if e.hasPending {
				// Keep the newer local values; they are sent right after.
				saved.Apply(e.pending)
			}
			e.applyServer(saved)
			if e.gone {
				e.remoteDelete()
				return
			}
			if e.hasPending {
				p := e.pending
				e.pending = domain.Patch{}
				e.hasPending = false
				e.update(p)
			}
		}
	})
}

func (e *Entity) update(p domain.Patch) {
	id := e.attrs.ID
	e.logger.Debug(id, "sync", "update")

	e.dispatch(func(ctx context.Context) func() {
		saved, err := e.repo.Update(ctx, id, p)
		return func() {
			if err != nil {
				e.fail("update", err)
				return
			}
			e.applyServer(saved)
		}
	})
}

func (e *Entity) remoteDelete() {
	id := e.attrs.ID
	e.logger.Debug(id, "sync", "delete")

	e.dispatch(func(ctx context.Context) func() {
		err := e.repo.Delete(ctx, id)
		return func() {
			if err != nil {
				e.fail("delete", err)
				return
			}
			e.synced.Publish(e)
		}
	})
}

// dispatch hands req to the dispatcher and counts it as in flight until its
// outcome has been applied.
func (e *Entity) dispatch(req Request) {
	e.inflight++
	e.dispatcher.Dispatch(func(ctx context.Context) func() {
		apply := req(ctx)
		return func() {
			e.inflight--
			if apply != nil {
				apply()
			}
			if e.inflight == 0 && e.onIdle != nil {
				fn := e.onIdle
				e.onIdle = nil
				fn()
			}
		}
	})
}

// whenIdle runs fn once every request of the entity has completed, which
// may be immediately.
func (e *Entity) whenIdle(fn func()) {
	if e.inflight == 0 {
		fn()
		return
	}
	e.onIdle = fn
}

// applyServer merges the backend's view of the entity. Late responses are
// not discarded: a response to an older request can overwrite a newer
// optimistic change until the newer request completes.
func (e *Entity) applyServer(saved domain.Task) {
	changed := e.attrs.Merge(saved)
	if e.collection != nil && slices.Contains(changed, domain.FieldOrder) {
		e.collection.resort()
	}
	if len(changed) > 0 {
		e.changed.Publish(ChangeEvent{Entity: e, Fields: changed})
	}
	e.synced.Publish(e)
}

func (e *Entity) fail(op string, err error) {
	e.logger.Error(e.attrs.ID, "sync", fmt.Sprintf("%s %s failed: %v", op, e.CID(), err))
	e.failed.Publish(ErrorEvent{Entity: e, Op: op, Err: err})
}
