// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/reelnotes/reelnotes/anim"
	"github.com/reelnotes/reelnotes/constant"
	"github.com/reelnotes/reelnotes/gesture"
	"github.com/reelnotes/reelnotes/internal/ui"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/media"
	"github.com/reelnotes/reelnotes/playback"
	"github.com/reelnotes/reelnotes/style"
	"github.com/reelnotes/reelnotes/util"
	"github.com/reelnotes/reelnotes/videosvc"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Terminal cells are not pixels. Gesture thresholds are denominated in
// pixels, so mouse coordinates are scaled by an approximate cell size
// before they reach the tracker.
const (
	cellWidth  = 10.0
	cellHeight = 20.0
)

// offsetMsg carries a transition animation frame into the update loop.
type offsetMsg struct {
	dx, dy float64
}

// playerClosedMsg signals that the player session finished tearing down.
type playerClosedMsg struct{}

// playerIndexMsg signals that a navigate gesture landed on a new feed index.
type playerIndexMsg int

// playerErrorMsg carries a session failure that should not eject the user
// from the player view.
type playerErrorMsg struct {
	err error
}

// statefulBubble encapsulates the comprehensive application state, including component models and workflow tracking.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool
	busy          bool // Protects against rapid input during async ops

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	inputC    textinput.Model
	feedC     list.Model
	historyC  list.Model
	progressC progress.Model
	helpC     help.Model

	// allNotes is the full feed; feedNotes is the visible slice after search.
	allNotes  []videosvc.Note
	feedNotes []videosvc.Note

	feedLoadedChannel     chan []videosvc.Note
	playerSnapshotChannel chan playback.Snapshot
	playerOffsetChannel   chan offsetMsg
	playerClosedChannel   chan playerClosedMsg
	playerIndexChannel    chan playerIndexMsg
	playerErrorChannel    chan error
	errorChannel          chan error

	service    videosvc.Service
	surface    *media.MPV
	prefs      *playback.Preferences
	controller *playback.Controller
	tracker    *gesture.Tracker

	playerSnapshot   mo.Option[playback.Snapshot]
	lastLiveSnapshot mo.Option[playback.Snapshot]
	offsetX, offsetY float64
	mouseDown        bool

	progressStatus string
	lastError      error

	width, height    int
	searchSuggestion mo.Option[string]
	notifier         *ui.Model

	options *Options
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

// setState performs a synchronous transition of both the application workflow and its associated keymap.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState facilitates an idempotent transition to a target state, recording the previous state in the navigation history when appropriate.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	// Do not push these states to history
	if !lo.Contains([]state{
		loadingState,
		playerState,
	}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

// previousState restores the application to its immediate predecessor in the navigation stack.
func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		s := b.statesHistory.Pop()
		b.setState(s)
	}
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	styledWidth := width - x
	styledHeight := height - y

	listWidth := width - xx
	listHeight := height - yy

	b.feedC.SetSize(listWidth, listHeight)
	b.feedC.Help.Width = listWidth

	b.historyC.SetSize(listWidth, listHeight)
	b.historyC.Help.Width = listWidth

	b.progressC.Width = styledWidth

	b.width = styledWidth
	b.height = styledHeight
	b.helpC.Width = listWidth
}

// startLoading enters a concurrent loading state, initializing visual indicators across child components.
func (b *statefulBubble) startLoading() tea.Cmd {
	b.loading = true
	b.busy = true
	return tea.Batch(b.feedC.StartSpinner(), b.historyC.StartSpinner())
}

// stopLoading exits the loading state and synchronizes child component visual indicators.
func (b *statefulBubble) stopLoading() tea.Cmd {
	b.loading = false
	b.busy = false
	b.feedC.StopSpinner()
	b.historyC.StopSpinner()
	return nil
}

// newBubble performs a complete initialization of the application's primary UI model.
func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,

		feedLoadedChannel:     make(chan []videosvc.Note),
		playerSnapshotChannel: make(chan playback.Snapshot, 16),
		playerOffsetChannel:   make(chan offsetMsg, 16),
		playerClosedChannel:   make(chan playerClosedMsg, 1),
		playerIndexChannel:    make(chan playerIndexMsg, 4),
		playerErrorChannel:    make(chan error, 1),
		errorChannel:          make(chan error, 1),

		service: videosvc.New(),
		surface: media.NewMPV(),
		prefs:   playback.NewPreferences(),

		notifier: &ui.Model{},
	}

	// Hooks fire on controller goroutines while the machine may still hold
	// work. Sends never block so a saturated update loop cannot stall the
	// player; offset frames and stale snapshots are droppable.
	bubble.controller = playback.NewController(
		bubble.surface,
		bubble.service,
		bubble.prefs,
		anim.New(),
		func() (float64, float64) {
			return float64(bubble.width) * cellWidth, float64(bubble.height) * cellHeight
		},
		playback.Hooks{
			OnStateChanged: func(s playback.Snapshot) {
				select {
				case bubble.playerSnapshotChannel <- s:
				default:
				}
			},
			OnOffsetChanged: func(dx, dy float64) {
				select {
				case bubble.playerOffsetChannel <- offsetMsg{dx: dx, dy: dy}:
				default:
				}
			},
			OnRequestClose: func() {
				select {
				case bubble.playerClosedChannel <- playerClosedMsg{}:
				default:
				}
			},
			OnIndexChanged: func(newIndex int) {
				select {
				case bubble.playerIndexChannel <- playerIndexMsg(newIndex):
				default:
				}
			},
			OnError: func(err error) {
				select {
				case bubble.playerErrorChannel <- err:
				default:
				}
			},
		},
	)

	bubble.tracker = gesture.NewTracker(gesture.DefaultConfig(), bubble.controller.Environment, bubble.controller.Apply)

	// Options encapsulates the runtime configuration for the terminal user interface.
	type listOptions struct {
		TitleStyle mo.Option[lipgloss.Style]
	}

	makeList := func(title string, description bool, options *listOptions) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.SetSpacing(viper.GetInt(key.TUIItemSpacing))
		delegate.ShowDescription = description
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		if titleStyle, ok := options.TitleStyle.Get(); ok {
			listC.Styles.Title = titleStyle
		}
		listC.StatusMessageLifetime = time.Hour * 999
		listC.SetShowPagination(false)
		listC.SetShowStatusBar(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = fmt.Sprintf("Search video notes (v%s)", constant.Version)
	bubble.inputC.CharLimit = 60
	bubble.inputC.Prompt = viper.GetString(key.TUISearchPromptString)

	bubble.progressC = progress.New(progress.WithDefaultGradient())

	bubble.feedC = makeList("Video Notes", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Lavender).Padding(0, 1),
		),
	})
	bubble.feedC.SetStatusBarItemName("note", "notes")

	bubble.historyC = makeList("History", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Yellow).Padding(0, 1),
		),
	})
	bubble.historyC.SetStatusBarItemName("entry", "entries")

	bubble.options = options

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.inputC.Focus()

	return &bubble
}
