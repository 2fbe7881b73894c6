// Package history provides the implementation for tracking and persisting user media consumption state.
package history

import (
	"fmt"
	"time"

	"github.com/metafates/gache"
	"github.com/reelnotes/reelnotes/filesystem"
	"github.com/reelnotes/reelnotes/videosvc"
	"github.com/reelnotes/reelnotes/where"
)

// SavedNote represents a single playback entry preserved in the user's history.
type SavedNote struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Summary           string    `json:"summary"`
	Tags              []string  `json:"tags"`
	DurationSec       float64   `json:"duration_sec"`
	WatchedPercentage float64   `json:"watched_percentage"`
	WatchedAt         time.Time `json:"watched_at"`
}

func (s *SavedNote) String() string {
	return fmt.Sprintf("%s : %.0f%%", s.Title, s.WatchedPercentage)
}

// Note reconstructs the feed entry from the saved record.
func (s *SavedNote) Note() videosvc.Note {
	return videosvc.Note{
		ID:          s.ID,
		Title:       s.Title,
		Summary:     s.Summary,
		Tags:        s.Tags,
		Duration:    time.Duration(s.DurationSec * float64(time.Second)),
		DurationSec: s.DurationSec,
	}
}

func newSavedNote(note videosvc.Note) *SavedNote {
	return &SavedNote{
		ID:          note.ID,
		Title:       note.Title,
		Summary:     note.Summary,
		Tags:        note.Tags,
		DurationSec: note.Duration.Seconds(),
	}
}

// cacher provides an abstracted, disk-backed registry for playback progress records.
var cacher = gache.New[map[string]*SavedNote](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of historical playback records from the persistent store.
func Get() (map[string]*SavedNote, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedNote), nil
	}
	return cached, nil
}

// Save persists the playback progress of a note to the history registry.
func Save(note videosvc.Note, percentage float64) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedNote(note)

	// Keep the maximum observed percentage so a re-watch never regresses progress
	if existing, exists := saved[record.ID]; exists {
		if percentage < existing.WatchedPercentage {
			percentage = existing.WatchedPercentage
		}
	}
	record.WatchedPercentage = percentage
	record.WatchedAt = time.Now()

	saved[record.ID] = record

	return cacher.Set(saved)
}

// Last returns the most recently watched record, if any.
func Last() (*SavedNote, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	var last *SavedNote
	for _, record := range saved {
		if last == nil || record.WatchedAt.After(last.WatchedAt) {
			last = record
		}
	}

	return last, nil
}

// Remove permanently deletes a playback record from the history registry.
func Remove(note *SavedNote) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, note.ID)
	return cacher.Set(saved)
}
