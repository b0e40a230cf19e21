package usecase

import (
	"context"

	"github.com/runoshun/tasklist/internal/domain"
)

// NewTaskInput contains the parameters for creating a task.
type NewTaskInput struct {
	Text string // Task text (required, trimmed)
	Done bool   // Create the task already completed
}

// NewTaskOutput contains the result of creating a task.
type NewTaskOutput struct {
	Task domain.Task // The created task with its assigned ID
}

// NewTask is the use case for creating a task at the end of the list.
type NewTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(tasks domain.TaskRepository, logger domain.Logger) *NewTask {
	return &NewTask{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute creates a new task.
func (uc *NewTask) Execute(ctx context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	// Reject blank text before touching the backend
	if _, err := domain.NewTask(in.Text); err != nil {
		return nil, err
	}

	s, err := openSession(ctx, uc.tasks, uc.logger)
	if err != nil {
		return nil, err
	}
	defer s.close()

	e, err := s.coll.Create(in.Text)
	if err != nil {
		return nil, err
	}
	if in.Done && !e.IsNew() {
		if err := e.Save(domain.SetDone(true)); err != nil {
			return nil, err
		}
	}
	if err := s.err(); err != nil {
		return nil, err
	}
	return &NewTaskOutput{Task: e.Attributes()}, nil
}
