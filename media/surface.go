// Package media defines the playback surface abstraction the controller drives.
// The primary implementation targets mpv via its JSON-IPC interface.
package media

// EventKind enumerates the notifications a surface emits.
type EventKind int

const (
	// EventLoaded fires once the media file is initialized and ready.
	EventLoaded EventKind = iota
	// EventPlaying fires when playback starts or resumes.
	EventPlaying
	// EventPaused fires when playback is suspended.
	EventPaused
	// EventTime carries a playback position update. Position updates are
	// throttled; duration changes are always delivered.
	EventTime
	// EventEnded fires when the media reaches its end.
	EventEnded
	// EventError carries a playback engine failure.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventTime:
		return "time"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single surface notification.
type Event struct {
	Kind EventKind

	// Position and Duration are in seconds. Duration is 0 while unknown.
	Position float64
	Duration float64

	// Err is set for EventError only.
	Err error
}

// Surface encapsulates the required capabilities of a playback engine.
// Implementations must tolerate calls after Close and return errors instead of panicking.
type Surface interface {
	// Load starts the engine (if needed) and initializes the given URL.
	Load(url string, title string, headers map[string]string) error

	// Play resumes playback.
	Play() error

	// Pause suspends playback.
	Pause() error

	// SeekTo transitions playback to an absolute timestamp in seconds.
	SeekTo(seconds float64) error

	// SetMuted sets the audio mute state.
	SetMuted(muted bool) error

	// SetRate sets the playback speed multiplier (1.0 is normal).
	SetRate(rate float64) error

	// Position retrieves the current absolute playback position in seconds.
	Position() (float64, error)

	// Duration retrieves the total length of the active media in seconds.
	Duration() (float64, error)

	// Subscribe registers a callback for surface events. The callback is
	// invoked from the engine's event goroutine and must not block.
	Subscribe(fn func(Event))

	// Close terminates the engine and releases all associated resources.
	// It is safe to call more than once.
	Close() error

	// Done returns a channel that is closed when the engine process exits.
	Done() <-chan struct{}
}
