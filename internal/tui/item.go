package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/model"
)

// RowState represents whether a row shows its text or an edit input.
type RowState int

const (
	RowViewing RowState = iota // Rendered from the item template
	RowEditing                 // Text input focused
)

// String returns the string representation of the state.
func (s RowState) String() string {
	switch s {
	case RowViewing:
		return "viewing"
	case RowEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// ItemView presents one entity as a list row.
//
// The row follows its entity: any change re-renders it and ends editing,
// and destroying the entity removes the row through onRemove. That destroy
// notification is the only way a row is torn down.
type ItemView struct {
	entity    *model.Entity
	templates *Templates
	onRemove  func(*ItemView)
	subs      []*model.Subscription
	rendered  string
	input     textinput.Model
	state     RowState
}

// NewItemView creates the row for e and subscribes it to e's notifications.
func NewItemView(e *model.Entity, templates *Templates, onRemove func(*ItemView)) *ItemView {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)

	v := &ItemView{
		entity:    e,
		templates: templates,
		onRemove:  onRemove,
		input:     ti,
	}
	v.subs = []*model.Subscription{
		e.OnChange(func(model.ChangeEvent) {
			v.state = RowViewing
			v.input.Blur()
			v.Render()
		}),
		e.OnDestroy(func(*model.Entity) {
			v.Clear()
		}),
	}
	v.Render()
	return v
}

// Entity returns the entity shown by the row.
func (v *ItemView) Entity() *model.Entity { return v.entity }

// State returns the current row state.
func (v *ItemView) State() RowState { return v.state }

// Editing reports whether the row is in the editing state.
func (v *ItemView) Editing() bool { return v.state == RowEditing }

// Rendered returns the last rendered text of the row.
func (v *ItemView) Rendered() string { return v.rendered }

// Render re-renders the row from the entity's current attributes.
func (v *ItemView) Render() string {
	out, err := v.templates.Item(v.entity.Attributes())
	if err != nil {
		out = "template error: " + err.Error()
	}
	v.rendered = strings.TrimRight(out, "\n")
	return v.rendered
}

// View returns the row content: the edit input while editing, the
// rendered template otherwise.
func (v *ItemView) View() string {
	if v.state == RowEditing {
		return v.input.View()
	}
	return v.rendered
}

// Edit switches to the editing state with the input pre-filled with the
// current text.
func (v *ItemView) Edit() tea.Cmd {
	v.state = RowEditing
	v.input.SetValue(v.entity.Text())
	v.input.CursorEnd()
	return v.input.Focus()
}

// Commit leaves the editing state and saves the edited text. Empty text
// destroys the entity instead. It does nothing when the row is not being
// edited.
func (v *ItemView) Commit() error {
	if v.state != RowEditing {
		return nil
	}
	text := strings.TrimSpace(v.input.Value())
	v.state = RowViewing
	v.input.Blur()
	if text == "" {
		v.entity.Destroy()
		return nil
	}
	return v.entity.Save(domain.SetTask(text))
}

// Cancel leaves the editing state and discards the input.
func (v *ItemView) Cancel() {
	v.state = RowViewing
	v.input.Blur()
	v.input.SetValue("")
}

// ToggleDone flips the entity's completion flag.
func (v *ItemView) ToggleDone() error {
	return v.entity.ToggleDone()
}

// Delete destroys the entity, which in turn removes the row.
func (v *ItemView) Delete() {
	v.entity.Destroy()
}

// Drop moves the row to the position it was dropped at and persists it.
func (v *ItemView) Drop(index int) error {
	return v.entity.MoveTo(index)
}

// Clear unsubscribes the row and removes it from its container.
func (v *ItemView) Clear() {
	model.Unsubscribe(v.subs...)
	v.subs = nil
	if v.onRemove != nil {
		v.onRemove(v)
		v.onRemove = nil
	}
}

// Detach unsubscribes the row without notifying its container. It is used
// when the container drops every row at once.
func (v *ItemView) Detach() {
	model.Unsubscribe(v.subs...)
	v.subs = nil
	v.onRemove = nil
}

// Update forwards msg to the edit input while editing.
func (v *ItemView) Update(msg tea.Msg) tea.Cmd {
	if v.state != RowEditing {
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}
