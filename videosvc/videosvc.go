// Package videosvc is the client surface of the video-notes backend: the feed
// of annotated clips and the signed, expiring playback URLs they play from.
package videosvc

import (
	"context"
	"time"
)

// VideoRef identifies a single video on the service.
type VideoRef struct {
	ID string
}

// PlaybackURL is a signed streaming URL with a limited lifetime.
type PlaybackURL struct {
	URL       string
	ExpiresAt time.Time

	// Headers are passed through to the media surface (referer, cookies).
	Headers map[string]string
}

// Expired reports whether the URL's signature lifetime has elapsed.
func (p PlaybackURL) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// Note is one feed entry: a clip with its AI-generated summary and tags.
// Summary and tags are opaque payload to the player core.
type Note struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Summary  string        `json:"summary"`
	Tags     []string      `json:"tags"`
	Duration time.Duration `json:"-"`

	// DurationSec is the wire representation of Duration.
	DurationSec float64 `json:"duration_sec"`
}

// Ref returns the service reference for the note's video.
func (n Note) Ref() VideoRef {
	return VideoRef{ID: n.ID}
}

// Service encapsulates the backend operations the player core depends on.
type Service interface {
	// Feed retrieves the current feed of notes, newest first.
	Feed(ctx context.Context) ([]Note, error)

	// GetPlaybackURL resolves a signed playback URL for the given video.
	GetPlaybackURL(ctx context.Context, ref VideoRef) (PlaybackURL, error)

	// RefreshPlaybackURL forces a new signed URL, bypassing any cached one.
	// Callers use it when a previously issued URL stopped working.
	RefreshPlaybackURL(ctx context.Context, ref VideoRef) (PlaybackURL, error)
}
