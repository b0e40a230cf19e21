// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/model"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Call records one repository invocation.
type Call struct {
	Patch domain.Patch
	Op    string // "list", "get", "create", "update" or "delete"
	ID    int
}

// MockTaskRepository is an in-memory domain.TaskRepository that applies
// the same ordering rules as the real stores and records every call.
// Fields are ordered to minimize memory padding.
type MockTaskRepository struct {
	Tasks     map[int]*domain.Task
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
	Calls     []Call
	NextIDN   int
	mu        sync.Mutex
}

// NewMockTaskRepository creates a new MockTaskRepository seeded with tasks.
func NewMockTaskRepository(tasks ...domain.Task) *MockTaskRepository {
	m := &MockTaskRepository{
		Tasks:   make(map[int]*domain.Task),
		NextIDN: 1,
	}
	for _, t := range tasks {
		task := t
		m.Tasks[task.ID] = &task
		if task.ID >= m.NextIDN {
			m.NextIDN = task.ID + 1
		}
	}
	return m
}

// List returns all tasks sorted by order.
func (m *MockTaskRepository) List(_ context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Op: "list"})
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.sorted(), nil
}

// Get retrieves a task by ID.
func (m *MockTaskRepository) Get(_ context.Context, id int) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Op: "get", ID: id})
	t, ok := m.Tasks[id]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return *t, nil
}

// Create stores a new task at the requested (or last) position.
func (m *MockTaskRepository) Create(_ context.Context, p domain.Patch) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Op: "create", Patch: p})
	if m.CreateErr != nil {
		return domain.Task{}, m.CreateErr
	}
	if p.Task == nil {
		return domain.Task{}, domain.ErrEmptyTask
	}
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}

	count := len(m.Tasks)
	order := count
	if p.Order != nil {
		order = domain.ClampOrder(*p.Order, count)
	}
	if order < count {
		domain.ShiftForInsert(m.all(), order)
	}
	task := &domain.Task{ID: m.NextIDN, Order: order}
	task.Apply(domain.Patch{Task: p.Task, IsDone: p.IsDone})
	m.Tasks[task.ID] = task
	m.NextIDN++
	return *task, nil
}

// Update applies the patch to an existing task.
func (m *MockTaskRepository) Update(_ context.Context, id int, p domain.Patch) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Op: "update", ID: id, Patch: p})
	if m.UpdateErr != nil {
		return domain.Task{}, m.UpdateErr
	}
	t, ok := m.Tasks[id]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}
	if p.Order != nil {
		to := domain.ClampOrder(*p.Order, len(m.Tasks))
		var others []*domain.Task
		for _, o := range m.all() {
			if o.ID != id {
				others = append(others, o)
			}
		}
		domain.ShiftForMove(others, t.Order, to)
		t.Order = to
	}
	t.Apply(domain.Patch{Task: p.Task, IsDone: p.IsDone})
	return *t, nil
}

// Delete removes a task and closes the gap in the ordering.
func (m *MockTaskRepository) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Op: "delete", ID: id})
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	t, ok := m.Tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	domain.ShiftForDelete(m.all(), t.Order)
	return nil
}

// CallsFor returns the recorded calls with the given operation.
func (m *MockTaskRepository) CallsFor(op string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot returns the stored tasks sorted by order.
func (m *MockTaskRepository) Snapshot() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted()
}

func (m *MockTaskRepository) all() []*domain.Task {
	out := make([]*domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		out = append(out, t)
	}
	return out
}

func (m *MockTaskRepository) sorted() []domain.Task {
	out := make([]domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b domain.Task) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return a.ID - b.ID
	})
	return out
}

// Ensure MockTaskRepository implements domain.TaskRepository.
var _ domain.TaskRepository = (*MockTaskRepository)(nil)

// ManualDispatcher queues requests until the test flushes them, which lets
// tests observe the optimistic state between a mutation and its completion.
type ManualDispatcher struct {
	queue []model.Request
}

// Dispatch queues req.
func (d *ManualDispatcher) Dispatch(req model.Request) {
	d.queue = append(d.queue, req)
}

// Pending returns the number of queued requests.
func (d *ManualDispatcher) Pending() int {
	return len(d.queue)
}

// Step runs the oldest queued request and applies its outcome.
// It returns false if nothing was queued.
func (d *ManualDispatcher) Step() bool {
	if len(d.queue) == 0 {
		return false
	}
	req := d.queue[0]
	d.queue = d.queue[1:]
	if apply := req(context.Background()); apply != nil {
		apply()
	}
	return true
}

// Flush runs queued requests, including those queued by completions,
// until the queue is empty.
func (d *ManualDispatcher) Flush() {
	for d.Step() {
	}
}

// Ensure ManualDispatcher implements model.Dispatcher.
var _ model.Dispatcher = (*ManualDispatcher)(nil)

// RecordingLogger collects log entries in memory.
type RecordingLogger struct {
	Entries []string
}

func (l *RecordingLogger) record(level string, msg string) {
	l.Entries = append(l.Entries, level+": "+msg)
}

// Debug records a debug entry.
func (l *RecordingLogger) Debug(_ int, _ string, msg string) { l.record("DEBUG", msg) }

// Info records an info entry.
func (l *RecordingLogger) Info(_ int, _ string, msg string) { l.record("INFO", msg) }

// Warn records a warning entry.
func (l *RecordingLogger) Warn(_ int, _ string, msg string) { l.record("WARN", msg) }

// Error records an error entry.
func (l *RecordingLogger) Error(_ int, _ string, msg string) { l.record("ERROR", msg) }

// Ensure RecordingLogger implements domain.Logger.
var _ domain.Logger = (*RecordingLogger)(nil)
