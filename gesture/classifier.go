package gesture

import (
	"math"
	"time"

	"github.com/reelnotes/reelnotes/key"
	"github.com/spf13/viper"
)

// Config holds every classification threshold as a named parameter.
// Displacements are in px, velocities in px/ms.
type Config struct {
	// HorizontalThreshold is the minimum |dx| for navigate and horizontal-exit swipes.
	HorizontalThreshold float64

	// VerticalUpThreshold is the minimum upward displacement for the reveal swipe.
	VerticalUpThreshold float64

	// VerticalDownThreshold is the minimum downward displacement for the exit swipe.
	VerticalDownThreshold float64

	// DiagonalThreshold is the minimum displacement on both axes for the diagonal exit.
	DiagonalThreshold float64

	// MinExitVelocity is the release velocity co-requirement of the
	// vertical-down and diagonal exits.
	MinExitVelocity float64

	// TapMaxDuration and TapMaxDisplacement bound what still reads as a tap.
	TapMaxDuration     time.Duration
	TapMaxDisplacement float64

	// LongPressDelay is the stationary hold time before the speed hold fires.
	LongPressDelay time.Duration

	// JitterThreshold is the movement tolerated before a pending long press is cancelled.
	JitterThreshold float64

	// ProgressZoneFraction is the share of the viewport height, from the
	// bottom, owned by the progress scrub zone.
	ProgressZoneFraction float64
}

// DefaultConfig returns the classification thresholds from the global configuration.
func DefaultConfig() Config {
	return Config{
		HorizontalThreshold:   viper.GetFloat64(key.GestureHorizontalThreshold),
		VerticalUpThreshold:   viper.GetFloat64(key.GestureVerticalUpThreshold),
		VerticalDownThreshold: viper.GetFloat64(key.GestureVerticalDownThreshold),
		DiagonalThreshold:     viper.GetFloat64(key.GestureDiagonalThreshold),
		MinExitVelocity:       viper.GetFloat64(key.GestureMinExitVelocity),
		TapMaxDuration:        time.Duration(viper.GetInt(key.GestureTapMaxMs)) * time.Millisecond,
		TapMaxDisplacement:    viper.GetFloat64(key.GestureTapMaxDisplacement),
		LongPressDelay:        time.Duration(viper.GetInt(key.GestureLongPressDelayMs)) * time.Millisecond,
		JitterThreshold:       viper.GetFloat64(key.GestureJitterThreshold),
		ProgressZoneFraction:  viper.GetFloat64(key.GestureProgressZoneFraction),
	}
}

// InProgressZone reports whether a y coordinate falls inside the bottom scrub zone.
func (c Config) InProgressZone(y, viewportHeight float64) bool {
	if viewportHeight <= 0 {
		return false
	}
	return y >= viewportHeight*(1-c.ProgressZoneFraction)
}

// Classify evaluates an accumulated interaction sample against the priority
// rules and returns at most one intent. It is pure: the same sample,
// environment and config always produce the same result.
//
// Priority order, high to low: details suppression, progress scrub,
// vertical-up reveal, horizontal navigate/exit, vertical-down exit,
// diagonal exit, tap.
func Classify(cfg Config, env Environment, s Sample) Intent {
	intent := Intent{
		Kind:       None,
		DX:         s.DX,
		DY:         s.DY,
		VelocityX:  s.VelocityX,
		VelocityY:  s.VelocityY,
		Duration:   s.Duration,
		OriginX:    s.OriginX,
		OriginY:    s.OriginY,
		OriginHalf: originHalf(s.OriginX, env.ViewportWidth),
	}

	absDX, absDY := math.Abs(s.DX), math.Abs(s.DY)

	// The panel owns its close affordance; everything else is ignored while it is open.
	if env.DetailsOpen {
		return intent
	}

	// The scrub zone wins every horizontal read that starts inside it.
	if cfg.InProgressZone(s.OriginY, env.ViewportHeight) && absDX > absDY {
		intent.Kind = ProgressScrub
		intent.Progress = scrubFraction(s.OriginX+s.DX, env.ViewportWidth)
		intent.Final = true
		return intent
	}

	// Reveal is checked before the horizontal family so swipe-up is never
	// swallowed by a slightly slanted horizontal read.
	if s.DY <= -cfg.VerticalUpThreshold && absDY > 0.7*absDX {
		intent.Kind = VerticalUpReveal
		return intent
	}

	if absDX > cfg.HorizontalThreshold && absDY < absDX {
		switch {
		case s.DX < 0 && env.CanNavigateNext:
			intent.Kind = NavigateNext
		case s.DX > 0 && env.CanNavigatePrev:
			intent.Kind = NavigatePrev
		case s.DX > 0:
			intent.Kind = HorizontalExit
		}
		// A leftward swipe with nothing to advance to stays inconclusive.
		return intent
	}

	if s.DY > cfg.VerticalDownThreshold && s.VelocityY > cfg.MinExitVelocity {
		intent.Kind = VerticalDownExit
		return intent
	}

	if s.DX > cfg.DiagonalThreshold && s.DY > cfg.DiagonalThreshold &&
		math.Hypot(s.VelocityX, s.VelocityY) > cfg.MinExitVelocity {
		intent.Kind = DiagonalExit
		return intent
	}

	if s.Duration < cfg.TapMaxDuration && math.Hypot(s.DX, s.DY) < cfg.TapMaxDisplacement {
		intent.Kind = Tap
		return intent
	}

	return intent
}

func originHalf(x, viewportWidth float64) Half {
	if viewportWidth > 0 && x >= viewportWidth/2 {
		return RightHalf
	}
	return LeftHalf
}

func scrubFraction(x, viewportWidth float64) float64 {
	if viewportWidth <= 0 {
		return 0
	}
	f := x / viewportWidth
	return math.Max(0, math.Min(1, f))
}
