package usecase

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/tasklist/internal/domain"
)

// TaskFile is the YAML document read by ImportTasks and written by ExportTasks.
type TaskFile struct {
	Tasks []domain.Task `yaml:"tasks"`
}

// ExportTasksInput contains the parameters for exporting tasks.
type ExportTasksInput struct{}

// ExportTasksOutput contains the result of exporting tasks.
type ExportTasksOutput struct {
	Data  []byte // YAML document
	Count int    // Number of exported tasks
}

// ExportTasks is the use case for writing every task as YAML.
type ExportTasks struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewExportTasks creates a new ExportTasks use case.
func NewExportTasks(tasks domain.TaskRepository, logger domain.Logger) *ExportTasks {
	return &ExportTasks{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute serializes the tasks in collection order.
func (uc *ExportTasks) Execute(ctx context.Context, _ ExportTasksInput) (*ExportTasksOutput, error) {
	s, err := openSession(ctx, uc.tasks, uc.logger)
	if err != nil {
		return nil, err
	}
	defer s.close()

	file := TaskFile{Tasks: s.snapshot()}
	data, err := yaml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return &ExportTasksOutput{Data: data, Count: len(file.Tasks)}, nil
}
