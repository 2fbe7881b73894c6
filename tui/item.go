// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/reelnotes/reelnotes/history"
	"github.com/reelnotes/reelnotes/icon"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/style"
	"github.com/reelnotes/reelnotes/util"
	"github.com/reelnotes/reelnotes/videosvc"
	"github.com/spf13/viper"
)

// listItem implements the list.Item interface, wrapping various domain models for terminal display.
type listItem struct {
	internal interface{}
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case videosvc.Note:
		title = e.Title
	case *history.SavedNote:
		title = e.Title
	case string:
		title = e
	default:
		title = t.FilterValue()
	}

	return
}

// Description retrieves the secondary metadata line for the list item.
func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case videosvc.Note:
		var parts []string

		if e.Duration > 0 {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.FaintColor).Render(formatDuration(e.Duration.Seconds())))
		}

		if len(e.Tags) > 0 {
			tags := fmt.Sprintf("%s %s", icon.Get(icon.Tag), strings.Join(e.Tags, ", "))
			parts = append(parts, lipgloss.NewStyle().Foreground(style.AccentColor).Render(tags))
		}

		if e.Summary != "" {
			parts = append(parts, style.Truncate(60)(e.Summary))
		}

		description = strings.Join(parts, " • ")

	case *history.SavedNote:
		completionThreshold := viper.GetFloat64(key.HistoryCompletionPercentage)
		if completionThreshold <= 0 {
			completionThreshold = 90.0
		}

		progressStr := ""
		if e.WatchedPercentage > 0 && e.WatchedPercentage < completionThreshold {
			progressStr = lipgloss.NewStyle().Foreground(style.Yellow).Render(fmt.Sprintf(" (%.0f%%)", e.WatchedPercentage))
		} else if e.WatchedPercentage >= completionThreshold {
			progressStr = lipgloss.NewStyle().Foreground(style.Green).Render(" (Watched)")
		}

		description = fmt.Sprintf("%s%s", util.Quantify(len(e.Tags), "tag", "tags"), progressStr)
	case string:
		description = ""
	}

	return
}

// FilterValue returns the string used for real-time list filtering and searching.
func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case videosvc.Note:
		if len(e.Tags) > 0 {
			return e.Title + " " + strings.Join(e.Tags, " ")
		}
		return e.Title
	case *history.SavedNote:
		return e.Title
	case string:
		return e
	default:
		return ""
	}
}

// formatDuration renders a second count as m:ss or h:mm:ss.
func formatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
