package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model. Requests dispatched and
// commands queued while handling msg are returned as part of the command.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	cmds := append([]tea.Cmd{cmd}, m.cmds...)
	m.cmds = nil
	return m, tea.Batch(append(cmds, m.dispatcher.Flush())...)
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-12, 10)
		m.statusLine.SetWidth(m.contentWidth())
		return nil

	case MsgApply:
		m.dispatcher.apply(msg)
		return nil

	case MsgReload:
		m.collection.FetchAll()
		return nil

	case MsgError:
		m.err = msg.Err
		m.logger.Error(0, "tui", msg.Err.Error())
		return nil
	}

	if row := m.editingRow(); row != nil {
		return row.Update(msg)
	}
	if m.focus == FocusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	// Clear error on any key press
	m.err = nil

	if key.Matches(msg, m.keys.ForceQuit) {
		return tea.Quit
	}
	// Nothing but the loading screen is visible until the first fetch.
	if !m.loaded {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return reload
		}
		return nil
	}
	if m.showHelp {
		return m.handleHelpMode(msg)
	}
	if row := m.editingRow(); row != nil {
		return m.handleEditMode(row, msg)
	}
	if m.focus == FocusInput {
		return m.handleInputMode(msg)
	}
	return m.handleListMode(msg)
}

// handleInputMode handles keys while the new-task input has focus.
func (m *Model) handleInputMode(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.create()
		return nil

	case key.Matches(msg, m.keys.Focus):
		return m.setFocus(FocusList)

	case key.Matches(msg, m.keys.Cancel):
		m.input.Reset()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// handleEditMode handles keys while a row is being edited.
func (m *Model) handleEditMode(row *ItemView, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.commitEditing()
		return nil

	case key.Matches(msg, m.keys.Cancel):
		row.Cancel()
		return nil

	case key.Matches(msg, m.keys.Focus):
		m.commitEditing()
		return m.setFocus(FocusInput)

	case msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		m.commitEditing()
		m.moveCursor(msg.Type == tea.KeyDown)
		return nil
	}

	return row.Update(msg)
}

// handleListMode handles keys while the rows have focus.
func (m *Model) handleListMode(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(false)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(true)

	case key.Matches(msg, m.keys.Focus):
		return m.setFocus(FocusInput)

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Refresh):
		return reload

	case key.Matches(msg, m.keys.ToggleAll):
		if m.showMain {
			m.toggleAllDone()
		}

	case key.Matches(msg, m.keys.Edit):
		if row := m.SelectedRow(); row != nil {
			return row.Edit()
		}

	case key.Matches(msg, m.keys.Toggle):
		if row := m.SelectedRow(); row != nil {
			m.setErr(row.ToggleDone())
		}

	case key.Matches(msg, m.keys.Delete):
		if row := m.SelectedRow(); row != nil {
			row.Delete()
		}

	case key.Matches(msg, m.keys.MoveUp):
		if m.cursor > 0 {
			m.dropSelected(m.cursor - 1)
		}

	case key.Matches(msg, m.keys.MoveDown):
		if m.cursor < len(m.rows)-1 {
			m.dropSelected(m.cursor + 1)
		}
	}
	return nil
}

func (m *Model) handleHelpMode(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Cancel):
		m.showHelp = false
	}
	return nil
}

// dropSelected moves the selected row to index and keeps it selected.
func (m *Model) dropSelected(index int) {
	row := m.SelectedRow()
	if err := row.Drop(index); err != nil {
		m.err = err
		return
	}
	if idx := slices.Index(m.rows, row); idx >= 0 {
		m.cursor = idx
	}
}

func (m *Model) moveCursor(down bool) {
	switch {
	case down && m.cursor < len(m.rows)-1:
		m.cursor++
	case !down && m.cursor > 0:
		m.cursor--
	}
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	if f == FocusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.err = err
	}
}
