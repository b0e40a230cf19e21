package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI.
func (m *Model) View() string {
	if !m.loaded {
		if m.err != nil {
			return m.styles.App.Render("Loading...\n\n" + m.styles.ErrorMsg.Render("Error: "+m.err.Error()) +
				"\n" + m.styles.FooterKey.Render("r") + " retry  " + m.styles.FooterKey.Render("q") + " quit")
		}
		return m.styles.App.Render("Loading...")
	}

	var content string
	if m.showHelp {
		content = m.viewHelp()
	} else {
		content = m.viewMain()
	}
	return m.styles.App.Render(content)
}

// viewMain renders the input, the task list and the footer.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	b.WriteString(m.viewInput())
	b.WriteString("\n")

	// The list and footer regions are hidden while the collection is empty.
	if m.showMain {
		b.WriteString(m.viewToggleAll())
		b.WriteString("\n")
		b.WriteString(m.viewTaskList())
		b.WriteString("\n")
		b.WriteString(m.styles.Stats.Render(m.footer))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.ErrorMsg.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine.Render(m.GetStatusInfo()))

	return b.String()
}

// viewHeader renders the header with "Tasks" and the task count.
func (m *Model) viewHeader() string {
	title := m.styles.HeaderText.Render("Tasks")
	countText := fmt.Sprintf("%d tasks", m.collection.Len())
	rightText := lipgloss.NewStyle().Foreground(Colors.Muted).Render(countText)

	headerWidth := m.contentWidth()
	spacing := headerWidth - lipgloss.Width(title) - lipgloss.Width(rightText)
	if spacing < 1 {
		spacing = 1
	}
	return m.styles.Header.Render(title + strings.Repeat(" ", spacing) + rightText)
}

func (m *Model) viewInput() string {
	prompt := m.styles.InputPrompt.Render("❯ ")
	style := m.styles.Input
	if m.focus == FocusInput {
		style = style.BorderForeground(Colors.Primary)
	}
	return style.Render(prompt + m.input.View())
}

func (m *Model) viewToggleAll() string {
	box := "[ ]"
	if m.allDone {
		box = "[x]"
	}
	return m.styles.ToggleAll.Render(box + " mark all as complete")
}

// viewTaskList renders one line per row, in collection order.
func (m *Model) viewTaskList() string {
	lines := make([]string, 0, len(m.rows))
	for i, row := range m.rows {
		selected := m.focus == FocusList && i == m.cursor
		lines = append(lines, m.renderRow(row, selected))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(row *ItemView, selected bool) string {
	cursor := m.styles.CursorNormal.Render("  ")
	if selected {
		cursor = m.styles.CursorSelected.Render("> ")
	}

	style := m.styles.Row
	switch {
	case row.Editing():
		style = m.styles.RowEditing
	case row.Entity().IsDone():
		style = m.styles.RowDone
	case selected:
		style = m.styles.RowSelected
	}
	return cursor + style.Render(row.View())
}

// viewHelp renders the full key binding help.
func (m *Model) viewHelp() string {
	m.help.ShowAll = true
	defer func() { m.help.ShowAll = false }()
	return m.styles.Help.Render(m.styles.HeaderText.Render("Keys") + "\n\n" + m.help.View(m.keys))
}

func (m *Model) contentWidth() int {
	w := m.width - 6 // App padding
	if w < 40 {
		w = 40
	}
	return w
}
