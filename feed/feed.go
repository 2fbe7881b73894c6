// Package feed holds the navigation window over the note feed and its search.
package feed

import (
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/videosvc"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// Context is the ordered set of notes the player navigates over and the
// position of the visible one. The zero value is an empty feed.
type Context struct {
	Items []videosvc.Note
	Index int
}

// Current returns the visible note, if any.
func (c Context) Current() mo.Option[videosvc.Note] {
	if c.Index < 0 || c.Index >= len(c.Items) {
		return mo.None[videosvc.Note]()
	}
	return mo.Some(c.Items[c.Index])
}

// CanNext reports whether a note exists after the visible one.
func (c Context) CanNext() bool {
	return c.Index < len(c.Items)-1
}

// CanPrev reports whether a note exists before the visible one.
func (c Context) CanPrev() bool {
	return c.Index > 0 && len(c.Items) > 0
}

// Next advances to the following note. It reports whether the index moved.
func (c *Context) Next() bool {
	if !c.CanNext() {
		return false
	}
	c.Index++
	return true
}

// Prev returns to the preceding note. It reports whether the index moved.
func (c *Context) Prev() bool {
	if !c.CanPrev() {
		return false
	}
	c.Index--
	return true
}

// Jump moves directly to the given index. It reports whether the index was valid.
func (c *Context) Jump(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	c.Index = index
	return true
}

// normalized returns a lowercased, trimmed string for consistent comparison.
func normalized(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Search filters notes by a free-form query. Candidates fuzzy-match on title,
// tags or summary; results are ordered by levenshtein distance to the title so
// the closest name wins, capped by the configured search limit.
func Search(notes []videosvc.Note, query string) []videosvc.Note {
	query = normalized(query)
	if query == "" {
		return notes
	}

	matched := lo.Filter(notes, func(n videosvc.Note, _ int) bool {
		if fuzzy.Match(query, normalized(n.Title)) {
			return true
		}
		if lo.SomeBy(n.Tags, func(tag string) bool {
			return fuzzy.Match(query, normalized(tag))
		}) {
			return true
		}
		return fuzzy.Match(query, normalized(n.Summary))
	})

	slices.SortStableFunc(matched, func(a, b videosvc.Note) int {
		return levenshtein.Distance(query, normalized(a.Title)) -
			levenshtein.Distance(query, normalized(b.Title))
	})

	limit := viper.GetInt(key.FeedSearchLimit)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched
}
