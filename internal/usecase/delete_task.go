package usecase

import (
	"context"

	"github.com/runoshun/tasklist/internal/domain"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID int // Task to delete
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Task domain.Task // The deleted task
}

// DeleteTask is the use case for deleting a task.
type DeleteTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(tasks domain.TaskRepository, logger domain.Logger) *DeleteTask {
	return &DeleteTask{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute deletes the task. The remaining tasks close the gap in the ordering.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	s, err := openSession(ctx, uc.tasks, uc.logger)
	if err != nil {
		return nil, err
	}
	defer s.close()

	e, err := s.find(in.TaskID)
	if err != nil {
		return nil, err
	}
	task := e.Attributes()
	e.Destroy()
	if err := s.err(); err != nil {
		return nil, err
	}
	return &DeleteTaskOutput{Task: task}, nil
}
