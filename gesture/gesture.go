// Package gesture classifies raw pointer interactions into player intents.
//
// A single drag stream can mean many things: a tap, an exit swipe, a reveal
// swipe, a navigation swipe, a progress scrub, or a speed hold. The package
// separates accumulation (Tracker) from interpretation (Classify) so the
// priority rules stay a pure, independently testable function.
package gesture

import "time"

// Kind enumerates the classified outcomes of one pointer interaction.
type Kind int

const (
	// None indicates an inconclusive interaction; the host snaps any drag offset back.
	None Kind = iota
	// Tap is a short, near-stationary press.
	Tap
	// LongPressStart fires when a stationary press outlives the hold delay.
	LongPressStart
	// LongPressEnd fires when a previously started speed hold is released.
	LongPressEnd
	// HorizontalExit is a rightward swipe that dismisses the player.
	HorizontalExit
	// VerticalDownExit is a fast downward swipe that dismisses the player.
	VerticalDownExit
	// DiagonalExit is a down-right swipe that dismisses the player.
	DiagonalExit
	// VerticalUpReveal is an upward swipe that opens the details panel.
	VerticalUpReveal
	// NavigateNext is a leftward swipe advancing to the next item.
	NavigateNext
	// NavigatePrev is a rightward swipe returning to the previous item.
	NavigatePrev
	// ProgressScrub is a horizontal drag inside the bottom progress zone.
	ProgressScrub
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Tap:
		return "tap"
	case LongPressStart:
		return "long-press-start"
	case LongPressEnd:
		return "long-press-end"
	case HorizontalExit:
		return "horizontal-exit"
	case VerticalDownExit:
		return "vertical-down-exit"
	case DiagonalExit:
		return "diagonal-exit"
	case VerticalUpReveal:
		return "vertical-up-reveal"
	case NavigateNext:
		return "navigate-next"
	case NavigatePrev:
		return "navigate-prev"
	case ProgressScrub:
		return "progress-scrub"
	default:
		return "unknown"
	}
}

// IsExit reports whether the kind dismisses the player.
func (k Kind) IsExit() bool {
	return k == HorizontalExit || k == VerticalDownExit || k == DiagonalExit
}

// Half identifies the horizontal origin half of an interaction.
type Half int

const (
	LeftHalf Half = iota
	RightHalf
)

// Intent is the transient value object produced for one pointer interaction.
// It is consumed once by the playback controller, then discarded.
type Intent struct {
	Kind Kind

	// Accumulated displacement from the origin, in px.
	DX, DY float64

	// Release velocity in px/ms.
	VelocityX, VelocityY float64

	// Duration of the interaction.
	Duration time.Duration

	// Origin of the interaction.
	OriginX, OriginY float64
	OriginHalf       Half

	// Progress carries the scrub target as a fraction of the track width (0..1).
	// Only meaningful for ProgressScrub intents.
	Progress float64

	// Final marks the release event of a scrub drag.
	Final bool
}

// Sample is the accumulated measurement of one interaction, evaluated at release.
type Sample struct {
	OriginX, OriginY     float64
	DX, DY               float64
	VelocityX, VelocityY float64
	Duration             time.Duration
}

// Environment carries the host context the classifier needs at evaluation time.
type Environment struct {
	ViewportWidth  float64
	ViewportHeight float64

	// DetailsOpen suppresses all classification while the details panel is up.
	DetailsOpen bool

	CanNavigateNext bool
	CanNavigatePrev bool
}
