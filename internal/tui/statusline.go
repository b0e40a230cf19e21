// Package tui provides the terminal user interface for the task list.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Focus represents which region receives key presses.
type Focus int

const (
	FocusInput Focus = iota // New-task input
	FocusList               // Task rows
)

func (f Focus) String() string {
	switch f {
	case FocusInput:
		return "input"
	case FocusList:
		return "tasks"
	default:
		return "unknown"
	}
}

// StatusLineInfo contains information for rendering the status line.
// Fields are ordered to minimize memory padding.
type StatusLineInfo struct {
	KeyHints []KeyHint
	Focus    Focus
}

// KeyHint represents a key and its description.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusLine renders a unified status line at the bottom of the screen.
// Fields are ordered to minimize memory padding.
type StatusLine struct {
	styles *Styles
	width  int
}

// NewStatusLine creates a new StatusLine with the given width and styles.
func NewStatusLine(width int, styles *Styles) *StatusLine {
	return &StatusLine{
		width:  width,
		styles: styles,
	}
}

// SetWidth updates the status line width.
func (s *StatusLine) SetWidth(width int) {
	s.width = width
}

// Render renders the status line with the given info.
func (s *StatusLine) Render(info StatusLineInfo) string {
	keyStyle := s.styles.FooterKey
	mutedStyle := lipgloss.NewStyle().Foreground(Colors.Muted)

	hints := make([]string, 0, len(info.KeyHints))
	for _, h := range info.KeyHints {
		hints = append(hints, keyStyle.Render(h.Key)+" "+h.Desc)
	}
	content := strings.Join(hints, "  ")
	right := mutedStyle.Render("focus:" + info.Focus.String())

	if s.width <= 0 {
		return s.styles.Footer.Render(content + "  " + right)
	}

	contentWidth := s.width - 2
	rightLen := lipgloss.Width(right)
	contentLen := lipgloss.Width(content)

	maxContentWidth := contentWidth - rightLen - 2
	if contentLen > maxContentWidth {
		if maxContentWidth <= 3 {
			content = "..."
		} else {
			content = lipgloss.NewStyle().MaxWidth(maxContentWidth-3).Render(content) + "..."
		}
		contentLen = lipgloss.Width(content)
	}

	spacing := contentWidth - contentLen - rightLen
	if spacing < 1 {
		spacing = 1
	}
	return s.styles.Footer.Width(s.width).Render(content + strings.Repeat(" ", spacing) + right)
}

// GetStatusInfo returns status line info for the current focus.
func (m *Model) GetStatusInfo() StatusLineInfo {
	info := StatusLineInfo{Focus: m.focus}

	switch {
	case m.editingRow() != nil:
		info.KeyHints = []KeyHint{
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
			{Key: "tab", Desc: "save & switch"},
		}
	case m.focus == FocusInput:
		info.KeyHints = []KeyHint{
			{Key: "enter", Desc: "add"},
			{Key: "tab", Desc: "tasks"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	default:
		info.KeyHints = []KeyHint{
			{Key: "j/k", Desc: "nav"},
			{Key: "space", Desc: "toggle"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "delete"},
			{Key: "K/J", Desc: "move"},
			{Key: "tab", Desc: "input"},
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		}
	}
	return info
}
