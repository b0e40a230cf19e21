package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/model"
)

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies (pointers first for alignment)
	collection *model.Collection
	dispatcher *Dispatcher
	templates  *Templates
	statusLine *StatusLine
	logger     domain.Logger
	sub        *model.Subscription
	err        error

	// State (slices - contain pointers)
	rows []*ItemView
	cmds []tea.Cmd // Queued by collection events, returned by the next Update

	// Components (structs with pointers)
	keys   KeyMap
	styles Styles
	help   help.Model

	// Input state (large structs)
	input textinput.Model

	footer string

	// Numeric state (smaller types last)
	focus    Focus
	width    int
	height   int
	cursor   int
	loaded   bool // First reset received
	showMain bool // List and footer regions are visible
	allDone  bool // Bulk checkbox
	showHelp bool
}

// New creates a new TUI Model over collection. The collection must have
// been created with dispatcher, which the Model drains after every update.
func New(collection *model.Collection, dispatcher *Dispatcher, templates *Templates, logger domain.Logger) *Model {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	if templates == nil {
		templates = DefaultTemplates()
	}

	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 500
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	m := &Model{
		collection: collection,
		dispatcher: dispatcher,
		templates:  templates,
		logger:     logger,
		keys:       DefaultKeyMap(),
		styles:     DefaultStyles(),
		help:       help.New(),
		input:      ti,
		focus:      FocusInput,
	}
	m.statusLine = NewStatusLine(m.contentWidth(), &m.styles)
	m.sub = collection.Subscribe(m.onCollectionEvent)
	m.refresh()
	return m
}

// Init triggers the initial fetch.
func (m *Model) Init() tea.Cmd {
	m.collection.FetchAll()
	return m.dispatcher.Flush()
}

// Close unsubscribes the Model and every row.
func (m *Model) Close() {
	m.sub.Unsubscribe()
	for _, row := range m.rows {
		row.Detach()
	}
	m.rows = nil
}

// Err returns the error shown in the status line, if any.
func (m *Model) Err() error { return m.err }

// Footer returns the rendered stats template.
func (m *Model) Footer() string { return m.footer }

// Rows returns the row views in display order.
func (m *Model) Rows() []*ItemView { return slices.Clone(m.rows) }

// SelectedRow returns the row under the cursor, or nil if none.
func (m *Model) SelectedRow() *ItemView {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

// onCollectionEvent keeps rows, footer and bulk checkbox in step with the
// collection.
func (m *Model) onCollectionEvent(ev model.CollectionEvent) {
	switch ev.Kind {
	case model.EventReset:
		for _, row := range m.rows {
			row.Detach()
		}
		m.rows = nil
		for _, e := range m.collection.All() {
			m.addRow(e)
		}
		m.loaded = true
	case model.EventAdd:
		m.addRow(ev.Entity)
		m.sortRows()
	case model.EventSort:
		m.sortRows()
	case model.EventError:
		m.cmds = append(m.cmds, reportError(collectionError(ev)))
	case model.EventRemove, model.EventChange, model.EventSync:
	}
	m.refresh()
}

func (m *Model) addRow(e *model.Entity) {
	m.rows = append(m.rows, NewItemView(e, m.templates, m.removeRow))
}

// removeRow is called by a row once its entity has been destroyed.
func (m *Model) removeRow(v *ItemView) {
	idx := slices.Index(m.rows, v)
	if idx < 0 {
		return
	}
	m.rows = slices.Delete(m.rows, idx, idx+1)
	m.refresh()
}

func (m *Model) sortRows() {
	selected := m.SelectedRow()
	slices.SortStableFunc(m.rows, func(a, b *ItemView) int {
		return m.collection.Index(a.entity) - m.collection.Index(b.entity)
	})
	if selected != nil {
		if idx := slices.Index(m.rows, selected); idx >= 0 {
			m.cursor = idx
		}
	}
}

func collectionError(ev model.CollectionEvent) error {
	if ev.Entity != nil {
		return fmt.Errorf("%s %q: %w", ev.Op, ev.Entity.Text(), ev.Err)
	}
	return fmt.Errorf("%s: %w", ev.Op, ev.Err)
}

// refresh recomputes the footer, region visibility and the bulk checkbox.
func (m *Model) refresh() {
	total := m.collection.Len()
	left := m.collection.CountLeft()

	footer, err := m.templates.Stats(StatsData{ItemsLeft: left, Done: total - left, Total: total})
	if err != nil {
		m.logger.Error(0, "tui", fmt.Sprintf("render stats: %v", err))
		footer = ""
	}
	m.footer = strings.TrimRight(footer, "\n")
	m.showMain = total > 0
	m.allDone = total > 0 && left == 0

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// create adds a task from the input text and clears the input.
func (m *Model) create() {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if text == "" {
		return
	}
	if _, err := m.collection.Create(text); err != nil {
		m.err = err
	}
}

// toggleAllDone flips the bulk checkbox and saves its state on every task.
func (m *Model) toggleAllDone() {
	m.allDone = !m.allDone
	done := m.allDone
	for _, e := range m.collection.Entities() {
		if err := e.Save(domain.SetDone(done)); err != nil {
			m.err = err
		}
	}
}

// editingRow returns the row being edited, or nil.
func (m *Model) editingRow() *ItemView {
	for _, row := range m.rows {
		if row.Editing() {
			return row
		}
	}
	return nil
}

// commitEditing commits the row being edited, if any. Edits are committed
// whenever the row loses focus.
func (m *Model) commitEditing() {
	if row := m.editingRow(); row != nil {
		if err := row.Commit(); err != nil {
			m.err = err
		}
	}
}
