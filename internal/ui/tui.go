// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the command channels back to the frame loop
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// CommandKind identifies a user action
type CommandKind int

const (
	CommandTogglePlay CommandKind = iota
	CommandStall
	CommandVolume
)

// Command is a user action forwarded to the frame loop
type Command struct {
	Kind   CommandKind
	Volume int
	Muted  bool
}

// Controls holds channels from the TUI to the frame loop
type Controls struct {
	Commands chan Command
	Quit     chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan Command, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls) Model {
	return Model{
		volume:   100,
		beat:     -1,
		controls: controls,
	}
}

// Run creates the TUI program. The caller runs it.
func Run(controls *Controls) *tea.Program {
	return tea.NewProgram(NewModel(controls), tea.WithAltScreen())
}
