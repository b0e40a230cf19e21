// Package domain contains core business entities and interfaces.
package domain

import "strings"

// Field names used in change notifications and wire payloads.
const (
	FieldID     = "id"
	FieldTask   = "task"
	FieldIsDone = "is_done"
	FieldOrder  = "order"
)

// Task is a single task record.
// Fields are ordered to minimize memory padding.
type Task struct {
	// Task is the task text; it is never empty once persisted.
	Task string `json:"task" yaml:"task"`
	// ID is assigned by the backend on first persist (0 = not persisted).
	ID     int  `json:"id,omitempty" yaml:"id,omitempty"`
	Order  int  `json:"order" yaml:"order"`
	IsDone bool `json:"is_done" yaml:"is_done,omitempty"`
}

// IsNew returns true if the task has not been persisted yet.
func (t *Task) IsNew() bool {
	return t.ID == 0
}

// Apply merges the set fields of p into t and returns the names of the
// fields whose value actually changed.
func (t *Task) Apply(p Patch) []string {
	var changed []string
	if p.Task != nil && *p.Task != t.Task {
		t.Task = *p.Task
		changed = append(changed, FieldTask)
	}
	if p.IsDone != nil && *p.IsDone != t.IsDone {
		t.IsDone = *p.IsDone
		changed = append(changed, FieldIsDone)
	}
	if p.Order != nil && *p.Order != t.Order {
		t.Order = *p.Order
		changed = append(changed, FieldOrder)
	}
	return changed
}

// Merge copies every attribute of other into t, including the ID when
// other carries one. It returns the changed field names.
func (t *Task) Merge(other Task) []string {
	var changed []string
	if other.ID != 0 && other.ID != t.ID {
		t.ID = other.ID
		changed = append(changed, FieldID)
	}
	changed = append(changed, t.Apply(other.Patch())...)
	return changed
}

// Patch returns a patch that sets every attribute of t.
func (t Task) Patch() Patch {
	return Patch{
		Task:   &t.Task,
		IsDone: &t.IsDone,
		Order:  &t.Order,
	}
}

// Patch is a set of partial task attributes. Nil fields are left untouched.
type Patch struct {
	Task   *string `json:"task,omitempty"`
	IsDone *bool   `json:"is_done,omitempty"`
	Order  *int    `json:"order,omitempty"`
}

// IsEmpty returns true if no field is set.
func (p Patch) IsEmpty() bool {
	return p.Task == nil && p.IsDone == nil && p.Order == nil
}

// Validate rejects patches that would leave a task without text.
func (p Patch) Validate() error {
	if p.Task != nil && strings.TrimSpace(*p.Task) == "" {
		return ErrEmptyTask
	}
	if p.Order != nil && *p.Order < 0 {
		return ErrInvalidOrder
	}
	return nil
}

// Union returns a patch holding the fields of p overwritten by those set in q.
func (p Patch) Union(q Patch) Patch {
	if q.Task != nil {
		p.Task = q.Task
	}
	if q.IsDone != nil {
		p.IsDone = q.IsDone
	}
	if q.Order != nil {
		p.Order = q.Order
	}
	return p
}

// SetTask returns a patch that sets the task text.
func SetTask(text string) Patch {
	return Patch{Task: &text}
}

// SetDone returns a patch that sets the completion flag.
func SetDone(done bool) Patch {
	return Patch{IsDone: &done}
}

// SetOrder returns a patch that sets the sort key.
func SetOrder(order int) Patch {
	return Patch{Order: &order}
}

// NewTask returns a validated, unsaved task with trimmed text.
func NewTask(text string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyTask
	}
	return Task{Task: text}, nil
}
