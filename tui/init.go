// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Init initializes the terminal user interface, triggering the initial feed load.
func (b *statefulBubble) Init() tea.Cmd {
	b.setState(loadingState)
	return tea.Batch(textinput.Blink, b.startLoading(), b.loadFeed(), b.waitForFeed(), b.spinnerC.Tick)
}
