package usecase

import (
	"context"

	"github.com/runoshun/tasklist/internal/domain"
)

// MoveTaskInput contains the parameters for moving a task.
type MoveTaskInput struct {
	TaskID   int // Task to move
	Position int // Target position (0-based, clamped to the last position)
}

// MoveTaskOutput contains the result of moving a task.
type MoveTaskOutput struct {
	Task     domain.Task   // The moved task
	Tasks    []domain.Task // Every task in its new order
	Position int           // Position the task ended up at
}

// MoveTask is the use case for moving a task to another position.
type MoveTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewMoveTask creates a new MoveTask use case.
func NewMoveTask(tasks domain.TaskRepository, logger domain.Logger) *MoveTask {
	return &MoveTask{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute moves the task. The position is translated into the sort key of
// the task currently there, and siblings in between shift by one, the same
// way the backend reorders them.
func (uc *MoveTask) Execute(ctx context.Context, in MoveTaskInput) (*MoveTaskOutput, error) {
	if in.Position < 0 {
		return nil, domain.ErrInvalidOrder
	}

	s, err := openSession(ctx, uc.tasks, uc.logger)
	if err != nil {
		return nil, err
	}
	defer s.close()

	e, err := s.find(in.TaskID)
	if err != nil {
		return nil, err
	}
	if err := e.MoveTo(in.Position); err != nil {
		return nil, err
	}
	if err := s.err(); err != nil {
		return nil, err
	}
	return &MoveTaskOutput{
		Task:     e.Attributes(),
		Tasks:    s.snapshot(),
		Position: s.coll.Index(e),
	}, nil
}
