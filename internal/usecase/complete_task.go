package usecase

import (
	"context"
	"errors"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/model"
)

// CompleteTaskInput contains the parameters for marking tasks done or not done.
type CompleteTaskInput struct {
	TaskID int  // Task to update (ignored when All is set)
	Done   bool // Completion flag to set
	All    bool // Apply to every task
}

// CompleteTaskOutput contains the result of marking tasks.
type CompleteTaskOutput struct {
	Changed   []domain.Task // Tasks whose flag actually changed
	ItemsLeft int           // Number of tasks not done afterwards
}

// CompleteTask is the use case for setting the completion flag.
// With All set, every task whose flag differs is saved individually.
type CompleteTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewCompleteTask creates a new CompleteTask use case.
func NewCompleteTask(tasks domain.TaskRepository, logger domain.Logger) *CompleteTask {
	return &CompleteTask{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute sets the completion flag.
func (uc *CompleteTask) Execute(ctx context.Context, in CompleteTaskInput) (*CompleteTaskOutput, error) {
	s, err := openSession(ctx, uc.tasks, uc.logger)
	if err != nil {
		return nil, err
	}
	defer s.close()

	targets := s.coll.Entities()
	if !in.All {
		e, err := s.find(in.TaskID)
		if err != nil {
			return nil, err
		}
		targets = []*model.Entity{e}
	}

	out := &CompleteTaskOutput{}
	var errs []error
	for _, e := range targets {
		if e.IsDone() == in.Done {
			continue
		}
		if err := e.Save(domain.SetDone(in.Done)); err != nil {
			errs = append(errs, err)
			continue
		}
		out.Changed = append(out.Changed, e.Attributes())
	}
	errs = append(errs, s.err())
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	out.ItemsLeft = s.coll.CountLeft()
	return out, nil
}
