package playback

import (
	"errors"
	"fmt"

	"github.com/reelnotes/reelnotes/videosvc"
)

// ErrURLExpired marks a failure attributable to a stale signed playback URL.
// It triggers the single refresh-and-retry path; a second failure is terminal.
var ErrURLExpired = errors.New("playback url expired")

// LoadError is a failure to acquire media for a video.
type LoadError struct {
	Ref videosvc.VideoRef
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Ref.ID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// PlaybackError is a decode or format failure after media was acquired.
type PlaybackError struct {
	Ref videosvc.VideoRef
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback %s: %v", e.Ref.ID, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
