package playback

import (
	"time"

	"github.com/reelnotes/reelnotes/media"
	"github.com/reelnotes/reelnotes/videosvc"
)

// Session is the live binding between one video item and the media surface,
// plus the derived UI state the host renders. Exactly one session is live at
// a time; its id guards every timer and async completion against firing into
// a torn-down successor.
type Session struct {
	id   uint64
	note videosvc.Note
	url  videosvc.PlaybackURL

	state       State
	muted       bool
	speedActive bool
	position    float64
	duration    float64

	progressVisible bool
	autoHide        *time.Timer

	detailsOpen bool
	refreshed   bool // the one URL refresh this session is allowed
	loadIssued  bool // this session's own surface bind has been issued
	tornDown    bool
}

// Snapshot is the immutable view of a session handed to the host.
type Snapshot struct {
	ID   uint64
	Note videosvc.Note

	State       State
	Muted       bool
	SpeedActive bool
	Position    float64
	Duration    float64

	ProgressVisible bool
	DetailsOpen     bool
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:              s.id,
		Note:            s.note,
		State:           s.state,
		Muted:           s.muted,
		SpeedActive:     s.speedActive,
		Position:        s.position,
		Duration:        s.duration,
		ProgressVisible: s.progressVisible,
		DetailsOpen:     s.detailsOpen,
	}
}

// cancelAutoHide stops the progress-bar auto-hide timer if one is pending.
func (s *Session) cancelAutoHide() {
	if s.autoHide != nil {
		s.autoHide.Stop()
		s.autoHide = nil
	}
}

// teardown releases the session's hold on the surface. It pauses media,
// resets the playback rate and cancels timers. Repeated calls are no-ops.
func (s *Session) teardown(surface media.Surface) {
	if s.tornDown {
		return
	}
	s.tornDown = true

	s.cancelAutoHide()

	if s.speedActive {
		_ = surface.SetRate(1.0)
		s.speedActive = false
	}

	_ = surface.Pause()
}
