// Package usecase contains the application use cases.
//
// Each use case runs one command against a collection loaded from the task
// repository. Requests are dispatched synchronously, so the collection's
// optimistic state and the backend agree once Execute returns.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/model"
)

// session is a collection loaded for a single command.
// Failed round-trips are collected from the collection's error events.
type session struct {
	coll *model.Collection
	sub  *model.Subscription
	errs []error
}

// openSession fetches every task from tasks into a new collection.
func openSession(ctx context.Context, tasks domain.TaskRepository, logger domain.Logger) (*session, error) {
	s := &session{}
	s.coll = model.NewCollection(tasks, model.ImmediateDispatcher{Ctx: ctx}, logger)
	s.sub = s.coll.Subscribe(func(ev model.CollectionEvent) {
		if ev.Kind != model.EventError {
			return
		}
		if ev.Entity != nil && ev.Entity.ID() != 0 {
			s.errs = append(s.errs, fmt.Errorf("%s #%d: %w", ev.Op, ev.Entity.ID(), ev.Err))
			return
		}
		s.errs = append(s.errs, fmt.Errorf("%s: %w", ev.Op, ev.Err))
	})

	s.coll.FetchAll()
	if err := s.err(); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// find returns the entity with the given ID.
func (s *session) find(id int) (*model.Entity, error) {
	e := s.coll.Get(id)
	if e == nil {
		return nil, fmt.Errorf("%w: #%d", domain.ErrTaskNotFound, id)
	}
	return e, nil
}

// err returns the errors collected since the last call and resets them.
func (s *session) err() error {
	err := errors.Join(s.errs...)
	s.errs = nil
	return err
}

func (s *session) close() {
	s.sub.Unsubscribe()
}

// snapshot returns the attributes of every entity in order.
func (s *session) snapshot() []domain.Task {
	tasks := make([]domain.Task, 0, s.coll.Len())
	for _, e := range s.coll.All() {
		tasks = append(tasks, e.Attributes())
	}
	return tasks
}
