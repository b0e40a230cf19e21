package usecase

import (
	"context"

	"github.com/runoshun/tasklist/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	LeftOnly bool // Only include tasks that are not done
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks     []domain.Task // Tasks in display order
	ItemsLeft int           // Number of tasks not done
	Total     int           // Number of tasks, regardless of LeftOnly
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository, logger domain.Logger) *ListTasks {
	return &ListTasks{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute lists the tasks in collection order.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	s, err := openSession(ctx, uc.tasks, uc.logger)
	if err != nil {
		return nil, err
	}
	defer s.close()

	out := &ListTasksOutput{
		ItemsLeft: s.coll.CountLeft(),
		Total:     s.coll.Len(),
	}
	if !in.LeftOnly {
		out.Tasks = s.snapshot()
		return out, nil
	}
	out.Tasks = make([]domain.Task, 0, out.ItemsLeft)
	for e := range s.coll.ItemsLeft() {
		out.Tasks = append(out.Tasks, e.Attributes())
	}
	return out, nil
}
