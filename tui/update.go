// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelnotes/reelnotes/feed"
	"github.com/reelnotes/reelnotes/gesture"
	"github.com/reelnotes/reelnotes/history"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/open"
	"github.com/reelnotes/reelnotes/playback"
	"github.com/reelnotes/reelnotes/query"
	"github.com/reelnotes/reelnotes/videosvc"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Process Ephemeral UI Notifications (captures `string` and `ui.ClearNotificationMsg`)
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = tea.Batch(cmd, uiCmd)
	}

	switch msg := msg.(type) {
	case error:
		b.raiseError(msg)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)

	// Player channel messages are accepted in any state so the waiters stay
	// armed even when a stale event crosses a state transition.
	case playback.Snapshot:
		b.playerSnapshot = mo.Some(msg)
		if msg.State.Live() && msg.Duration > 0 {
			b.lastLiveSnapshot = mo.Some(msg)
		}
		return b, tea.Batch(cmd, b.waitForPlayerSnapshot())
	case offsetMsg:
		b.offsetX, b.offsetY = msg.dx, msg.dy
		return b, tea.Batch(cmd, b.waitForPlayerOffset())
	case playerIndexMsg:
		if last, ok := b.lastLiveSnapshot.Get(); ok {
			b.savePlayerProgress(last)
			b.lastLiveSnapshot = mo.None[playback.Snapshot]()
		}
		b.feedC.Select(int(msg))
		return b, tea.Batch(cmd, b.waitForPlayerIndex())
	case playerClosedMsg:
		if last, ok := b.lastLiveSnapshot.Get(); ok {
			b.savePlayerProgress(last)
			b.lastLiveSnapshot = mo.None[playback.Snapshot]()
		}
		b.playerSnapshot = mo.None[playback.Snapshot]()
		b.offsetX, b.offsetY = 0, 0
		b.tracker.Reset()
		if b.state == playerState {
			b.previousState()
		}
		if historyCmd, err := b.loadHistory(); err == nil {
			cmd = tea.Batch(cmd, historyCmd)
		}
		return b, tea.Batch(cmd, b.waitForPlayerClosed())
	case playerErrorMsg:
		notify := func() tea.Msg {
			return fmt.Sprintf("Playback failed: %v", msg.err)
		}
		return b, tea.Batch(cmd, notify, b.waitForPlayerError())

	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit):
			b.controller.Close()
			_ = b.surface.Close()
			return b, tea.Quit
		}

		// Input Guard: Ignore non-priority keys during asynchronous operations.
		if b.busy && b.state != playerState && b.state != errorState {
			return b, nil
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.back) && b.state != playerState:
			switch b.state {
			case searchState:
				b.inputC.SetValue("")
				b.searchSuggestion = mo.None[string]()
				if len(b.allNotes) != len(b.feedNotes) {
					b.feedNotes = b.allNotes
					cmd = tea.Batch(cmd, b.setFeedItems(b.feedNotes))
				}
			case historyState:
				b.historyC.ResetSelected()
				b.historyC.ResetFilter()
			case feedState:
				b.feedC.ResetSelected()
				b.feedC.ResetFilter()
			}

			b.previousState()
			b.stopLoading()
			return b, cmd
		}
	}

	switch b.state {
	case loadingState:
		return b.updateLoading(msg)
	case feedState:
		return b.updateFeed(msg)
	case searchState:
		return b.updateSearch(msg)
	case historyState:
		return b.updateHistory(msg)
	case playerState:
		return b.updatePlayer(msg)
	case errorState:
		return b.updateError(msg)
	}

	return b, nil
}

func (b *statefulBubble) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds = make([]tea.Cmd, 0)
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.statesHistory.Len() > 0 {
				b.previousState()
			} else {
				return b, tea.Quit
			}
		}
	case []videosvc.Note:
		b.allNotes = msg
		b.feedNotes = msg
		cmds = append(cmds, b.setFeedItems(msg))
		b.stopLoading()

		// Resume the most recent history entry when launched with --continue.
		if b.options.Continue {
			b.options.Continue = false
			if historyCmd, err := b.loadHistory(); err == nil {
				cmds = append(cmds, historyCmd)
			}
			if idx, ok := b.resumeIndex(); ok {
				b.newState(feedState)
				b.feedC.Select(idx)
				b.newState(playerState)
				return b, tea.Batch(append(cmds, b.openPlayer(idx))...)
			}
		}

		b.newState(feedState)
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) updateFeed(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.feedC.Items()); n > 0 && b.feedC.Index() == 0 {
				b.feedC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.feedC.Items()); n > 0 && b.feedC.Index() == n-1 {
				b.feedC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.search):
			b.newState(searchState)
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if note, ok := selectedNote(&b.feedC); ok {
				if err := open.Start(noteWebURL(note)); err != nil {
					b.raiseError(err)
				}
			}
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.history):
			historyCmd, err := b.loadHistory()
			if err != nil {
				b.raiseError(err)
				return b, nil
			}
			b.newState(historyState)
			return b, historyCmd
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.feedC.SelectedItem() == nil {
				break
			}

			idx := b.feedC.Index()
			if note, ok := b.feedC.SelectedItem().(*listItem).internal.(videosvc.Note); ok {
				go query.Remember(note.Title, 2)
			}
			b.newState(playerState)
			return b, b.openPlayer(idx)
		}
	}

	b.feedC, cmd = b.feedC.Update(msg)
	return b, cmd
}

// selectedNote extracts the note wrapped by the list's current selection.
func selectedNote(l *list.Model) (videosvc.Note, bool) {
	item, ok := l.SelectedItem().(*listItem)
	if !ok {
		return videosvc.Note{}, false
	}

	note, ok := item.internal.(videosvc.Note)
	return note, ok
}

// noteWebURL builds the service's web address for a note.
func noteWebURL(note videosvc.Note) string {
	base := strings.TrimRight(viper.GetString(key.ServiceBaseURL), "/")
	return fmt.Sprintf("%s/notes/%s", base, url.PathEscape(note.ID))
}

func (b *statefulBubble) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm) && b.inputC.Value() != "":
			go query.Remember(b.inputC.Value(), 1)
			b.feedNotes = feed.Search(b.allNotes, b.inputC.Value())
			b.newState(feedState)
			b.feedC.ResetSelected()
			return b, b.setFeedItems(b.feedNotes)
		case bubblesKey.Matches(msg, b.keymap.acceptSearchSuggestion) && b.searchSuggestion.IsPresent():
			b.inputC.SetValue(b.searchSuggestion.MustGet())
			b.searchSuggestion = mo.None[string]()
			b.inputC.SetCursor(len(b.inputC.Value()))
			return b, nil
		}
	}

	b.inputC, cmd = b.inputC.Update(msg)

	if b.inputC.Value() != "" {
		if suggestion, ok := query.Suggest(b.inputC.Value()).Get(); ok && suggestion != b.inputC.Value() {
			b.searchSuggestion = mo.Some(suggestion)
		} else {
			b.searchSuggestion = mo.None[string]()
		}
	} else if b.searchSuggestion.IsPresent() {
		b.searchSuggestion = mo.None[string]()
	}

	return b, cmd
}

func (b *statefulBubble) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.historyC.Items()); n > 0 && b.historyC.Index() == 0 {
				b.historyC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.historyC.Items()); n > 0 && b.historyC.Index() == n-1 {
				b.historyC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.remove):
			if b.historyC.SelectedItem() != nil {
				entry := b.historyC.SelectedItem().(*listItem).internal.(*history.SavedNote)
				_ = history.Remove(entry)
				historyCmd, err := b.loadHistory()
				if err != nil {
					b.raiseError(err)
					return b, nil
				}
				return b, historyCmd
			}
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.historyC.SelectedItem() == nil {
				break
			}
			entry := b.historyC.SelectedItem().(*listItem).internal.(*history.SavedNote)

			// Prefer the live feed entry; fall back to a single-note context
			// when the note is no longer in the feed.
			b.feedNotes = b.allNotes
			idx := -1
			for i, n := range b.feedNotes {
				if n.ID == entry.ID {
					idx = i
					break
				}
			}
			if idx == -1 {
				b.feedNotes = []videosvc.Note{entry.Note()}
				idx = 0
			}

			b.newState(playerState)
			return b, b.openPlayer(idx)
		}
	}

	b.historyC, cmd = b.historyC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updatePlayer(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.MouseMsg:
		x := float64(msg.X) * cellWidth
		y := float64(msg.Y) * cellHeight
		now := time.Now()

		switch msg.Action {
		case tea.MouseActionPress:
			if msg.Button == tea.MouseButtonLeft {
				b.mouseDown = true
				b.tracker.Begin(x, y, now)
			}
		case tea.MouseActionMotion:
			if b.mouseDown {
				b.tracker.Move(x, y, now)
			}
		case tea.MouseActionRelease:
			if b.mouseDown {
				b.mouseDown = false
				b.tracker.End(x, y, now)
			}
		}
		return b, nil

	case tea.KeyMsg:
		snapshot, hasSession := b.playerSnapshot.Get()

		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			if hasSession && snapshot.DetailsOpen {
				b.controller.CloseDetails()
				return b, nil
			}
			b.controller.Close()
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.playPause):
			b.controller.Apply(gesture.Intent{Kind: gesture.Tap, OriginHalf: gesture.LeftHalf, Final: true})
		case bubblesKey.Matches(msg, b.keymap.mute):
			b.controller.Apply(gesture.Intent{Kind: gesture.Tap, OriginHalf: gesture.RightHalf, Final: true})
		case bubblesKey.Matches(msg, b.keymap.nextVideo):
			b.controller.Apply(gesture.Intent{Kind: gesture.NavigateNext, Final: true})
		case bubblesKey.Matches(msg, b.keymap.prevVideo):
			b.controller.Apply(gesture.Intent{Kind: gesture.NavigatePrev, Final: true})
		case bubblesKey.Matches(msg, b.keymap.details):
			b.controller.Apply(gesture.Intent{Kind: gesture.VerticalUpReveal, Final: true})
		case bubblesKey.Matches(msg, b.keymap.scrubLeft):
			if hasSession && snapshot.Duration > 0 {
				b.controller.Apply(scrubIntent(snapshot, -5))
			}
		case bubblesKey.Matches(msg, b.keymap.scrubRight):
			if hasSession && snapshot.Duration > 0 {
				b.controller.Apply(scrubIntent(snapshot, 5))
			}
		}
		return b, nil
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, cmd
}

// scrubIntent translates a relative keyboard seek into a scrub gesture.
func scrubIntent(s playback.Snapshot, deltaSeconds float64) gesture.Intent {
	progress := (s.Position + deltaSeconds) / s.Duration
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	return gesture.Intent{
		Kind:     gesture.ProgressScrub,
		Progress: progress,
		Final:    true,
	}
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
			return b, nil
		}
	}
	return b, cmd
}
