// Package playback owns the full-screen player: one live session per visible
// video, a state machine driven by classified gesture intents and media
// surface events, and the hooks the host container observes.
package playback

// State enumerates the primary machine states of a session.
//
// Loading → Ready ⇄ Playing ⇄ Paused, any of which can reach Errored on a
// media failure. Closing → Closed is terminal and reachable from everywhere.
type State int

const (
	// Idle means no session is bound.
	Idle State = iota
	// Loading covers URL resolution and media initialization.
	Loading
	// Ready means media is initialized but not yet playing.
	Ready
	// Playing means the surface is actively playing.
	Playing
	// Paused means playback is suspended by the user.
	Paused
	// Errored is entered on a terminal media failure.
	Errored
	// Closing covers the exit transition animation.
	Closing
	// Closed is terminal; the session is torn down.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Errored:
		return "errored"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Live reports whether the state still accepts gesture intents.
func (s State) Live() bool {
	switch s {
	case Loading, Ready, Playing, Paused, Errored:
		return true
	default:
		return false
	}
}
