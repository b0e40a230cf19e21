package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFocus_String(t *testing.T) {
	assert.Equal(t, "input", FocusInput.String())
	assert.Equal(t, "tasks", FocusList.String())
	assert.Equal(t, "unknown", Focus(7).String())
}

func TestStatusLine_Render(t *testing.T) {
	styles := DefaultStyles()
	sl := NewStatusLine(60, &styles)

	out := sl.Render(StatusLineInfo{
		Focus:    FocusList,
		KeyHints: []KeyHint{{Key: "q", Desc: "quit"}},
	})

	assert.Contains(t, out, "q quit")
	assert.Contains(t, out, "focus:tasks")
	assert.Equal(t, 60, lipgloss.Width(out))
}

func TestStatusLine_TruncatesHints(t *testing.T) {
	styles := DefaultStyles()
	sl := NewStatusLine(40, &styles)

	hints := make([]KeyHint, 0, 10)
	for range 10 {
		hints = append(hints, KeyHint{Key: "key", Desc: "description"})
	}
	out := sl.Render(StatusLineInfo{KeyHints: hints})

	assert.True(t, strings.Contains(out, "..."))
	assert.Contains(t, out, "focus:input")
}

func TestModel_GetStatusInfo(t *testing.T) {
	m, _ := started(t, threeTasks()...)

	assert.Equal(t, FocusInput, m.GetStatusInfo().Focus)
	assert.Equal(t, "add", m.GetStatusInfo().KeyHints[0].Desc)

	press(m, "tab")
	assert.Equal(t, FocusList, m.GetStatusInfo().Focus)

	press(m, "e")
	assert.Equal(t, "save", m.GetStatusInfo().KeyHints[0].Desc)
}

func TestStatusLine_SetWidth(t *testing.T) {
	styles := DefaultStyles()
	sl := NewStatusLine(60, &styles)

	sl.SetWidth(80)

	assert.Equal(t, 80, lipgloss.Width(sl.Render(StatusLineInfo{Focus: FocusInput})))
}

func TestModel_StatusLineFollowsWindowSize(t *testing.T) {
	m, _ := started(t, threeTasks()...)
	assert.Equal(t, 40, m.statusLine.width, "minimum before the first size message")

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 114, m.statusLine.width)
	assert.Equal(t, 114, lipgloss.Width(m.statusLine.Render(m.GetStatusInfo())))
}
