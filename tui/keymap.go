// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/reelnotes/reelnotes/color"
	"github.com/reelnotes/reelnotes/style"
)

// statefulKeymap defines the keyboard interactions available within various application states.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	confirm,
	acceptSearchSuggestion,
	remove,
	openURL,
	back,
	search,
	history,
	up, down, left, right,
	top, bottom,
	playPause, mute, nextVideo, prevVideo, details, scrubLeft, scrubRight,
	showHelp key.Binding
}

// setState updates the active keymap configuration to match the specified application state.
func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp(style.Fg(color.Orange)("enter"), style.Fg(color.Orange)("play")),
		),
		acceptSearchSuggestion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept search suggestion"),
		),
		openURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		history: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "history"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "left"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "right"),
		),
		top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute/unmute"),
		),
		nextVideo: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next video"),
		),
		prevVideo: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prev video"),
		),
		details: key.NewBinding(
			key.WithKeys("i", "up"),
			key.WithHelp("i", "details"),
		),
		scrubLeft: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "seek back"),
		),
		scrubRight: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "seek forward"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit, k.back))
	case historyState:
		return to2(h(k.confirm, k.remove, k.back))
	case feedState:
		return h(k.confirm, k.search, k.history, k.quit), h(k.confirm, k.search, k.history, k.openURL, k.back, k.quit)
	case searchState:
		return to2(h(k.confirm, k.acceptSearchSuggestion, k.back, k.forceQuit))
	case playerState:
		return h(k.playPause, k.mute, k.nextVideo, k.prevVideo, k.back),
			h(k.playPause, k.mute, k.nextVideo, k.prevVideo, k.details, k.scrubLeft, k.scrubRight, k.back, k.forceQuit)
	case errorState:
		return to2(h(k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		NextPage:             k.right,
		PrevPage:             k.left,
		GoToStart:            k.top,
		GoToEnd:              k.bottom,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: k.confirm,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}
