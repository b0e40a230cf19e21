// Package jsonstore provides a JSON file-based implementation of TaskRepository.
package jsonstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/runoshun/tasklist/internal/domain"
)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Tasks map[string]*domain.Task `json:"tasks"`
	Meta  meta                    `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	NextTaskID int `json:"nextTaskID"`
}

// Store implements domain.TaskRepository using a JSON file.
// Every operation holds an flock on a sibling lock file, so several
// processes may share one store.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// List returns every task sorted by order.
func (s *Store) List(_ context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.withLock(func(data *storeData) error {
		tasks = sortedTasks(data)
		return nil
	})
	return tasks, err
}

// Get retrieves a task by ID.
func (s *Store) Get(_ context.Context, id int) (domain.Task, error) {
	var task domain.Task
	err := s.withLock(func(data *storeData) error {
		t, ok := data.Tasks[strconv.Itoa(id)]
		if !ok {
			return domain.ErrTaskNotFound
		}
		task = *t
		return nil
	})
	return task, err
}

// Create stores a new task. Without an order it is appended; with one,
// later tasks shift down to make room.
func (s *Store) Create(_ context.Context, p domain.Patch) (domain.Task, error) {
	if p.Task == nil {
		return domain.Task{}, domain.ErrEmptyTask
	}
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}

	var task domain.Task
	err := s.withLockWrite(func(data *storeData) error {
		count := len(data.Tasks)
		order := count
		if p.Order != nil {
			order = domain.ClampOrder(*p.Order, count)
		}
		if order < count {
			domain.ShiftForInsert(all(data), order)
		}

		task = domain.Task{ID: data.Meta.NextTaskID, Order: order}
		task.Apply(domain.Patch{Task: p.Task, IsDone: p.IsDone})
		data.Tasks[strconv.Itoa(task.ID)] = &task
		data.Meta.NextTaskID++
		return nil
	})
	return task, err
}

// Update applies the patch to an existing task.
func (s *Store) Update(_ context.Context, id int, p domain.Patch) (domain.Task, error) {
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}

	var task domain.Task
	err := s.withLockWrite(func(data *storeData) error {
		t, ok := data.Tasks[strconv.Itoa(id)]
		if !ok {
			return domain.ErrTaskNotFound
		}
		if p.Order != nil {
			to := domain.ClampOrder(*p.Order, len(data.Tasks))
			others := slices.DeleteFunc(all(data), func(o *domain.Task) bool { return o.ID == id })
			domain.ShiftForMove(others, t.Order, to)
			t.Order = to
		}
		t.Apply(domain.Patch{Task: p.Task, IsDone: p.IsDone})
		task = *t
		return nil
	})
	return task, err
}

// Delete removes a task by ID and closes the gap in the ordering.
func (s *Store) Delete(_ context.Context, id int) error {
	return s.withLockWrite(func(data *storeData) error {
		key := strconv.Itoa(id)
		t, ok := data.Tasks[key]
		if !ok {
			return domain.ErrTaskNotFound
		}
		delete(data.Tasks, key)
		domain.ShiftForDelete(all(data), t.Order)
		return nil
	})
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	return s.write(&storeData{
		Meta:  meta{NextTaskID: 1},
		Tasks: make(map[string]*domain.Task),
	})
}

func all(data *storeData) []*domain.Task {
	out := make([]*domain.Task, 0, len(data.Tasks))
	for _, t := range data.Tasks {
		out = append(out, t)
	}
	return out
}

func sortedTasks(data *storeData) []domain.Task {
	out := make([]domain.Task, 0, len(data.Tasks))
	for _, t := range data.Tasks {
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

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := sonic.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	if data.Tasks == nil {
		data.Tasks = make(map[string]*domain.Task)
	}
	if data.Meta.NextTaskID < 1 {
		data.Meta.NextTaskID = 1
	}
	for key, t := range data.Tasks {
		t.ID, _ = strconv.Atoi(key)
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Ensure Store implements TaskRepository and StoreInitializer.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
