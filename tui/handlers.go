// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelnotes/reelnotes/feed"
	"github.com/reelnotes/reelnotes/history"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/log"
	"github.com/reelnotes/reelnotes/playback"
	"github.com/reelnotes/reelnotes/util"
	"github.com/reelnotes/reelnotes/videosvc"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func (b *statefulBubble) loadFeed() tea.Cmd {
	return func() tea.Msg {
		log.Info("loading feed")
		b.progressStatus = "Loading feed"

		notes, err := b.service.Feed(context.Background())
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
			return nil
		}

		log.Infof("loaded %s", util.Quantify(len(notes), "note", "notes"))
		b.feedLoadedChannel <- notes
		return nil
	}
}

func (b *statefulBubble) waitForFeed() tea.Cmd {
	return func() tea.Msg {
		select {
		case notes := <-b.feedLoadedChannel:
			return notes
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

// setFeed replaces the feed list contents, keeping the full set around for
// search and for building playback contexts.
func (b *statefulBubble) setFeedItems(notes []videosvc.Note) tea.Cmd {
	items := lo.Map(notes, func(n videosvc.Note, _ int) list.Item {
		return &listItem{internal: n}
	})

	return b.feedC.SetItems(items)
}

func (b *statefulBubble) loadHistory() (tea.Cmd, error) {
	saved, err := history.Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WatchedAt.After(entries[j].WatchedAt)
	})

	var items []list.Item
	for _, e := range entries {
		items = append(items, &listItem{
			internal: e,
		})
	}

	return b.historyC.SetItems(items), nil
}

// openPlayer binds the player controller to the loaded feed at the given
// index and arms the event waiters that pump controller output back into the
// update loop.
func (b *statefulBubble) openPlayer(index int) tea.Cmd {
	if index < 0 || index >= len(b.feedNotes) {
		return nil
	}

	note := b.feedNotes[index]
	b.playerSnapshot = b.controller.Snapshot()
	b.offsetX, b.offsetY = 0, 0
	b.mouseDown = false
	b.tracker.Reset()

	log.Infof("opening player for %s", note.Title)
	b.progressStatus = "Resolving playback URL"

	if viper.GetBool(key.HistorySaveOnWatch) {
		_ = history.Save(note, 0)
	}

	open := func() tea.Msg {
		err := b.controller.Open(context.Background(), feed.Context{
			Items: b.feedNotes,
			Index: index,
		})
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
		}
		return nil
	}

	return tea.Batch(
		open,
		b.waitForPlayerSnapshot(),
		b.waitForPlayerOffset(),
		b.waitForPlayerClosed(),
		b.waitForPlayerIndex(),
		b.waitForPlayerError(),
	)
}

func (b *statefulBubble) waitForPlayerSnapshot() tea.Cmd {
	return func() tea.Msg {
		return <-b.playerSnapshotChannel
	}
}

func (b *statefulBubble) waitForPlayerOffset() tea.Cmd {
	return func() tea.Msg {
		return <-b.playerOffsetChannel
	}
}

func (b *statefulBubble) waitForPlayerClosed() tea.Cmd {
	return func() tea.Msg {
		return <-b.playerClosedChannel
	}
}

func (b *statefulBubble) waitForPlayerIndex() tea.Cmd {
	return func() tea.Msg {
		return <-b.playerIndexChannel
	}
}

func (b *statefulBubble) waitForPlayerError() tea.Cmd {
	return func() tea.Msg {
		return playerErrorMsg{err: <-b.playerErrorChannel}
	}
}

// savePlayerProgress persists the watched percentage of the given snapshot.
func (b *statefulBubble) savePlayerProgress(s playback.Snapshot) {
	if !viper.GetBool(key.HistorySaveOnWatch) {
		return
	}

	if s.Duration <= 0 {
		return
	}

	percentage := s.Position / s.Duration * 100
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	if err := history.Save(s.Note, percentage); err != nil {
		log.Error(err)
	}
}

// resumeIndex locates the most recently watched note within the loaded feed.
func (b *statefulBubble) resumeIndex() (int, bool) {
	last, err := history.Last()
	if err != nil || last == nil {
		return 0, false
	}

	for i, n := range b.feedNotes {
		if n.ID == last.ID {
			return i, true
		}
	}

	return 0, false
}
