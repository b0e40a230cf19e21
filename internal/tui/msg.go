package tui

import tea "github.com/charmbracelet/bubbletea"

// Msg is the sealed interface for all TUI messages.
// All message types must implement the sealed() method.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgApply carries the completion of a backend request back onto the
// event loop. Seq is assigned by the Dispatcher and completions are applied
// in that order.
type MsgApply struct {
	Apply func()
	Seq   uint64
}

func (MsgApply) sealed() {}

// MsgError is sent when a backend round-trip fails. The error stays in the
// status line until the next key press.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// MsgReload is sent to refetch the whole collection.
type MsgReload struct{}

func (MsgReload) sealed() {}

func reload() tea.Msg { return MsgReload{} }

func reportError(err error) tea.Cmd {
	return func() tea.Msg { return MsgError{Err: err} }
}
