package usecase

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/tasklist/internal/domain"
)

// ImportTasksInput contains the parameters for importing tasks.
type ImportTasksInput struct {
	Data    []byte // YAML document (see TaskFile)
	Replace bool   // Delete every existing task first
	DryRun  bool   // Parse and validate without touching the backend
}

// ImportTasksOutput contains the result of importing tasks.
type ImportTasksOutput struct {
	Created []domain.Task // Created tasks (or tasks that would be created in dry-run mode)
	Deleted int           // Number of tasks removed by Replace
}

// ImportTasks is the use case for creating tasks from a YAML document.
// Tasks are appended in document order; IDs and orders in the document are
// ignored.
type ImportTasks struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(tasks domain.TaskRepository, logger domain.Logger) *ImportTasks {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &ImportTasks{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute validates the whole document before creating anything.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	drafts, err := parseTaskFile(in.Data)
	if err != nil {
		return nil, err
	}
	if in.DryRun {
		return &ImportTasksOutput{Created: drafts}, nil
	}

	s, err := openSession(ctx, uc.tasks, uc.logger)
	if err != nil {
		return nil, err
	}
	defer s.close()

	out := &ImportTasksOutput{}
	if in.Replace {
		for _, e := range s.coll.Entities() {
			e.Destroy()
			out.Deleted++
		}
		if err := s.err(); err != nil {
			return nil, err
		}
	}

	for _, draft := range drafts {
		e, err := s.coll.Create(draft.Task)
		if err != nil {
			return nil, err
		}
		if draft.IsDone && !e.IsNew() {
			if err := e.Save(domain.SetDone(true)); err != nil {
				return nil, err
			}
		}
		if err := s.err(); err != nil {
			return out, fmt.Errorf("import %q: %w", draft.Task, err)
		}
		uc.logger.Info(e.ID(), "import", fmt.Sprintf("created %q", e.Text()))
		out.Created = append(out.Created, e.Attributes())
	}
	return out, nil
}

func parseTaskFile(data []byte) ([]domain.Task, error) {
	var file TaskFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	drafts := make([]domain.Task, 0, len(file.Tasks))
	for i, t := range file.Tasks {
		draft, err := domain.NewTask(t.Task)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		draft.IsDone = t.IsDone
		drafts = append(drafts, draft)
	}
	return drafts, nil
}
