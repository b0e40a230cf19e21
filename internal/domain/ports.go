package domain

import (
	"context"
	"time"
)

// TaskRepository is the persistence boundary for tasks.
// It is implemented by the REST client (remote /tasks collection) and by the
// stores backing the reference server.
type TaskRepository interface {
	// List returns every task sorted by order.
	List(ctx context.Context) ([]Task, error)

	// Get retrieves a task by ID. Returns ErrTaskNotFound if it does not exist.
	Get(ctx context.Context, id int) (Task, error)

	// Create persists a new task and returns it with its assigned ID and order.
	// The patch must set Task; Order is optional and clamped to the task count.
	Create(ctx context.Context, p Patch) (Task, error)

	// Update applies the patch to an existing task and returns the result.
	Update(ctx context.Context, id int, p Patch) (Task, error)

	// Delete removes a task by ID.
	Delete(ctx context.Context, id int) error
}

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error
}

// Logger writes categorized log lines, optionally attributed to a task.
// A taskID of 0 means the entry is not tied to a task.
type Logger interface {
	Debug(taskID int, category, msg string)
	Info(taskID int, category, msg string)
	Warn(taskID int, category, msg string)
	Error(taskID int, category, msg string)
}

// NopLogger discards every entry.
type NopLogger struct{}

func (NopLogger) Debug(int, string, string) {}
func (NopLogger) Info(int, string, string)  {}
func (NopLogger) Warn(int, string, string)  {}
func (NopLogger) Error(int, string, string) {}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// ConfigLoader loads configuration.
type ConfigLoader interface {
	// Load returns the configuration file merged over the defaults.
	// A missing file yields the defaults.
	Load() (*Config, error)
}

// ConfigInfo holds information about a config file.
type ConfigInfo struct {
	Path    string // File path
	Content string // File content (empty if not exists)
	Exists  bool   // Whether the file exists
}

// ConfigManager manages the configuration file.
type ConfigManager interface {
	// Info returns information about the config file.
	Info() ConfigInfo
	// Init writes the default config file.
	// Returns ErrConfigExists if the file already exists.
	Init() error
}
