package usecase

import (
	"context"

	"github.com/runoshun/tasklist/internal/domain"
)

// EditTaskInput contains the parameters for editing a task.
type EditTaskInput struct {
	Text   string // New task text (required)
	TaskID int    // Task to edit
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task domain.Task // The updated task
}

// EditTask is the use case for replacing the text of a task.
// Unlike an inline edit in the list view, empty text is an error here
// rather than a delete.
type EditTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(tasks domain.TaskRepository, logger domain.Logger) *EditTask {
	return &EditTask{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute updates the task text.
func (uc *EditTask) Execute(ctx context.Context, in EditTaskInput) (*EditTaskOutput, error) {
	s, err := openSession(ctx, uc.tasks, uc.logger)
	if err != nil {
		return nil, err
	}
	defer s.close()

	e, err := s.find(in.TaskID)
	if err != nil {
		return nil, err
	}
	if err := e.Save(domain.SetTask(in.Text)); err != nil {
		return nil, err
	}
	if err := s.err(); err != nil {
		return nil, err
	}
	return &EditTaskOutput{Task: e.Attributes()}, nil
}
