// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/reelnotes/reelnotes/color"
	"github.com/reelnotes/reelnotes/icon"
	"github.com/reelnotes/reelnotes/playback"
	"github.com/reelnotes/reelnotes/style"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case feedState:
		output = b.viewFeed()
	case searchState:
		output = b.viewSearch()
	case historyState:
		output = b.viewHistory()
	case playerState:
		output = b.viewPlayer()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewFeed() string {
	return listExtraPaddingStyle.Render(b.feedC.View())
}

func (b *statefulBubble) viewHistory() string {
	return listExtraPaddingStyle.Render(b.historyC.View())
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Search Notes"),
		"",
		b.inputC.View(),
	}

	if suggestion, ok := b.searchSuggestion.Get(); ok {
		lines = append(lines, "", style.Faint(fmt.Sprintf("tab: %s", suggestion)))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewPlayer() string {
	snapshot, ok := b.playerSnapshot.Get()
	if !ok {
		return b.renderLines(
			true,
			[]string{
				style.Title("Now Playing"),
				"",
				b.spinnerC.View() + " " + b.progressStatus,
			},
		)
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		style.Truncate(b.width)(fmt.Sprintf(icon.Get(icon.Note)+" %s", style.Fg(color.Purple)(snapshot.Note.Title))),
		"",
		b.playerStatusLine(snapshot),
	}

	if snapshot.ProgressVisible && snapshot.Duration > 0 {
		lines = append(lines,
			"",
			b.progressC.ViewAs(snapshot.Position/snapshot.Duration),
			style.Faint(fmt.Sprintf("%s / %s", formatDuration(snapshot.Position), formatDuration(snapshot.Duration))),
		)
	}

	if snapshot.DetailsOpen {
		lines = append(lines, "", b.detailsSheet(snapshot))
	}

	content := strings.Join(lines, "\n")

	// A transition in flight shifts the whole card by the animated offset.
	if b.offsetX != 0 || b.offsetY != 0 {
		content = lipgloss.NewStyle().
			MarginLeft(int(b.offsetX / cellWidth)).
			MarginTop(int(b.offsetY / cellHeight)).
			Render(content)
	}

	return b.renderLines(true, strings.Split(content, "\n"))
}

func (b *statefulBubble) playerStatusLine(s playback.Snapshot) string {
	var parts []string

	switch s.State {
	case playback.Playing:
		parts = append(parts, icon.Get(icon.Play)+" Playing")
	case playback.Paused:
		parts = append(parts, icon.Get(icon.Pause)+" Paused")
	case playback.Errored:
		parts = append(parts, style.ErrorTitle(icon.Get(icon.Fail)+" Failed"))
	case playback.Closing:
		parts = append(parts, style.Faint("Closing"))
	default:
		parts = append(parts, b.spinnerC.View()+" "+s.State.String())
	}

	if s.Muted {
		parts = append(parts, icon.Get(icon.Mute)+" muted")
	} else {
		parts = append(parts, icon.Get(icon.Sound))
	}

	if s.SpeedActive {
		parts = append(parts, style.Fg(color.Orange)(icon.Get(icon.Speed)+" 2x"))
	}

	return strings.Join(parts, "  ")
}

func (b *statefulBubble) detailsSheet(s playback.Snapshot) string {
	lines := []string{
		style.Bold(s.Note.Title),
	}

	if len(s.Note.Tags) > 0 {
		badges := make([]string, len(s.Note.Tags))
		for i, tag := range s.Note.Tags {
			badges[i] = style.Tag(style.Base, style.AccentColor)(tag)
		}
		lines = append(lines, strings.Join(badges, " "))
	}

	if s.Note.Summary != "" {
		lines = append(lines, "", wrap.String(s.Note.Summary, b.width))
	}

	sheet := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))

	return sheet
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Critical Failure: %v", b.lastError.Error()))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
		},
			errorMsg,
		),
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
