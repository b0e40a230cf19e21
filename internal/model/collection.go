package model

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/runoshun/tasklist/internal/domain"
)

// EventKind identifies a collection-level notification.
type EventKind int

const (
	EventAdd    EventKind = iota // An entity was appended
	EventRemove                  // An entity was destroyed and removed
	EventReset                   // The whole content was replaced by a fetch
	EventSort                    // The order of entities changed
	EventChange                  // An entity's attributes changed
	EventSync                    // An entity round-trip succeeded
	EventError                   // A round-trip failed
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventAdd:
		return "add"
	case EventRemove:
		return "remove"
	case EventReset:
		return "reset"
	case EventSort:
		return "sort"
	case EventChange:
		return "change"
	case EventSync:
		return "sync"
	case EventError:
		return "error"
	}
	return "unknown"
}

// CollectionEvent is published for every collection mutation and for every
// entity notification that bubbles up to the collection.
// Fields are ordered to minimize memory padding.
type CollectionEvent struct {
	Err    error   // Set for EventError
	Entity *Entity // nil for EventReset and fetch errors
	Op     string  // Failed operation for EventError
	Fields []string
	Kind   EventKind
}

// Collection is the ordered set of task entities for a session.
// Iteration order is ascending by Order, ties broken by insertion order.
type Collection struct {
	repo       domain.TaskRepository
	dispatcher Dispatcher
	logger     domain.Logger

	entities []*Entity
	subs     map[*Entity][]*Subscription
	errSubs  map[*Entity]*Subscription
	events   Topic[CollectionEvent]

	nextSeq int
	nextCID int
}

// NewCollection creates an empty collection persisted through repo.
func NewCollection(repo domain.TaskRepository, dispatcher Dispatcher, logger domain.Logger) *Collection {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Collection{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
		subs:       make(map[*Entity][]*Subscription),
		errSubs:    make(map[*Entity]*Subscription),
	}
}

// Subscribe registers fn for every collection event.
func (c *Collection) Subscribe(fn func(CollectionEvent)) *Subscription {
	return c.events.Subscribe(fn)
}

// Len returns the number of entities.
func (c *Collection) Len() int { return len(c.entities) }

// At returns the entity at position i in sort order.
func (c *Collection) At(i int) *Entity {
	if i < 0 || i >= len(c.entities) {
		return nil
	}
	return c.entities[i]
}

// All iterates over the entities in sort order.
func (c *Collection) All() iter.Seq2[int, *Entity] {
	return func(yield func(int, *Entity) bool) {
		for i, e := range c.entities {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entities returns a copy of the entities in sort order.
func (c *Collection) Entities() []*Entity {
	return slices.Clone(c.entities)
}

// Get returns the entity with the given backend ID, or nil.
func (c *Collection) Get(id int) *Entity {
	for _, e := range c.entities {
		if e.attrs.ID == id && id != 0 {
			return e
		}
	}
	return nil
}

// Index returns the position of e, or -1.
func (c *Collection) Index(e *Entity) int {
	return slices.Index(c.entities, e)
}

// ItemsLeft lazily yields the entities that are not done.
// It is evaluated on every iteration and never cached.
func (c *Collection) ItemsLeft() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, e := range c.entities {
			if e.attrs.IsDone {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// CountLeft returns the number of entities that are not done.
func (c *Collection) CountLeft() int {
	n := 0
	for range c.ItemsLeft() {
		n++
	}
	return n
}

// FetchAll loads every task from the backend and replaces the content
// with a single EventReset.
func (c *Collection) FetchAll() {
	c.logger.Debug(0, "sync", "fetch all")
	c.dispatcher.Dispatch(func(ctx context.Context) func() {
		tasks, err := c.repo.List(ctx)
		return func() {
			if err != nil {
				c.logger.Error(0, "sync", fmt.Sprintf("fetch failed: %v", err))
				c.events.Publish(CollectionEvent{Kind: EventError, Op: "fetch", Err: err})
				return
			}
			c.Reset(tasks)
		}
	})
}

// Reset replaces the content with tasks. No per-entity events fire;
// observers receive exactly one EventReset once the replacement is complete.
// Replaced entities are detached completely, including requests of theirs
// that are still in flight.
func (c *Collection) Reset(tasks []domain.Task) {
	for _, e := range c.entities {
		Unsubscribe(c.subs[e]...)
		e.collection = nil
	}
	for _, sub := range c.errSubs {
		sub.Unsubscribe()
	}
	c.subs = make(map[*Entity][]*Subscription, len(tasks))
	c.errSubs = make(map[*Entity]*Subscription, len(tasks))
	c.entities = make([]*Entity, 0, len(tasks))
	for _, t := range tasks {
		e := c.newEntity(t)
		c.attach(e)
		c.entities = append(c.entities, e)
	}
	c.sortEntities()
	c.events.Publish(CollectionEvent{Kind: EventReset})
}

// Create builds an entity from text, appends it and persists it.
// Empty text is rejected with domain.ErrEmptyTask.
func (c *Collection) Create(text string) (*Entity, error) {
	task, err := domain.NewTask(text)
	if err != nil {
		return nil, err
	}
	// Provisional order; the backend appends new tasks at the end as well.
	task.Order = len(c.entities)

	e := c.newEntity(task)
	c.attach(e)
	c.entities = append(c.entities, e)
	c.sortEntities()
	c.events.Publish(CollectionEvent{Kind: EventAdd, Entity: e})

	e.persist(task.Patch())
	return e, nil
}

func (c *Collection) newEntity(t domain.Task) *Entity {
	c.nextCID++
	return &Entity{
		repo:       c.repo,
		dispatcher: c.dispatcher,
		logger:     c.logger,
		attrs:      t,
		cid:        c.nextCID,
	}
}

// attach takes ownership of e and bubbles its notifications.
func (c *Collection) attach(e *Entity) {
	e.collection = c
	e.seq = c.nextSeq
	c.nextSeq++
	c.subs[e] = []*Subscription{
		e.OnChange(func(ev ChangeEvent) {
			c.events.Publish(CollectionEvent{Kind: EventChange, Entity: ev.Entity, Fields: ev.Fields})
		}),
		e.OnSync(func(e *Entity) {
			c.events.Publish(CollectionEvent{Kind: EventSync, Entity: e})
		}),
	}
	c.errSubs[e] = e.OnError(func(ev ErrorEvent) {
		c.events.Publish(CollectionEvent{Kind: EventError, Entity: ev.Entity, Op: ev.Op, Err: ev.Err})
	})
}

// remove detaches e, closes the gap in the ordering and publishes EventRemove.
func (c *Collection) remove(e *Entity) {
	idx := c.Index(e)
	if idx < 0 {
		return
	}
	c.entities = slices.Delete(c.entities, idx, idx+1)
	Unsubscribe(c.subs[e]...)
	delete(c.subs, e)
	e.collection = nil
	// Errors keep bubbling until the entity's last request has completed,
	// so a failed delete is still reported.
	if sub, ok := c.errSubs[e]; ok {
		delete(c.errSubs, e)
		e.whenIdle(sub.Unsubscribe)
	}

	domain.ShiftForDelete(c.siblings(nil), e.attrs.Order)
	c.events.Publish(CollectionEvent{Kind: EventRemove, Entity: e})
}

// moved mirrors the backend's reordering of siblings after e moved from
// the given order to its current one, then re-sorts.
func (c *Collection) moved(e *Entity, from int) {
	domain.ShiftForMove(c.siblings(e), from, e.attrs.Order)
	c.resort()
}

// maxOrder returns the largest sort key in use, and at least Len()-1.
func (c *Collection) maxOrder() int {
	last := len(c.entities) - 1
	if last < 0 {
		return 0
	}
	return max(last, c.entities[last].attrs.Order)
}

func (c *Collection) resort() {
	before := slices.Clone(c.entities)
	c.sortEntities()
	if !slices.Equal(before, c.entities) {
		c.events.Publish(CollectionEvent{Kind: EventSort})
	}
}

func (c *Collection) sortEntities() {
	slices.SortFunc(c.entities, func(a, b *Entity) int {
		if n := cmp.Compare(a.attrs.Order, b.attrs.Order); n != 0 {
			return n
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

// siblings returns the attributes of every entity except skip.
func (c *Collection) siblings(skip *Entity) []*domain.Task {
	out := make([]*domain.Task, 0, len(c.entities))
	for _, e := range c.entities {
		if e != skip {
			out = append(out, &e.attrs)
		}
	}
	return out
}
