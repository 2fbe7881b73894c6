// Package tui provides the primary terminal user interface implementation.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Continue bool
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(options *Options) error {
	bubble := newBubble(options)
	defer func() {
		_ = bubble.surface.Close()
	}()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
