package gesture

import (
	"math"
	"sync"
	"time"
)

// velocityWindow bounds how far back the release velocity estimate looks.
const velocityWindow = 100 * time.Millisecond

// maxRecentPoints caps the retained move samples per interaction.
const maxRecentPoints = 8

type point struct {
	x, y float64
	at   time.Time
}

// Tracker consumes a raw pointer stream (begin, moves, end) and emits intents.
//
// Most intents are produced once, at release, via Classify. Two families are
// emitted mid-stream: a ProgressScrub intent per move while scrubbing, and the
// LongPressStart/LongPressEnd pair driven by the hold timer. The timer callback
// is guarded by a generation counter so a stale timer can never fire a side
// effect into a later interaction.
type Tracker struct {
	mu   sync.Mutex
	cfg  Config
	env  func() Environment
	emit func(Intent)

	active    bool
	gen       uint64
	origin    point
	last      point
	recent    []point
	scrubbing bool

	longPressTimer *time.Timer
	longPressFired bool
}

// NewTracker returns a tracker that classifies against cfg, samples the host
// environment through env at evaluation time, and delivers intents to emit.
func NewTracker(cfg Config, env func() Environment, emit func(Intent)) *Tracker {
	return &Tracker{cfg: cfg, env: env, emit: emit}
}

// Begin starts a new interaction at the given coordinates.
// Any interaction still in flight is discarded first.
func (t *Tracker) Begin(x, y float64, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetLocked()

	e := t.env()
	t.active = true
	t.origin = point{x: x, y: y, at: at}
	t.last = t.origin
	t.recent = append(t.recent[:0], t.origin)

	// The speed hold belongs to stationary presses on the right half, outside
	// the scrub zone, and never while the details panel is open.
	if !e.DetailsOpen &&
		originHalf(x, e.ViewportWidth) == RightHalf &&
		!t.cfg.InProgressZone(y, e.ViewportHeight) {
		gen := t.gen
		t.longPressTimer = time.AfterFunc(t.cfg.LongPressDelay, func() {
			t.fireLongPress(gen)
		})
	}
}

// Move advances the interaction to the given coordinates.
func (t *Tracker) Move(x, y float64, at time.Time) {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}

	t.last = point{x: x, y: y, at: at}
	t.recent = append(t.recent, t.last)
	if len(t.recent) > maxRecentPoints {
		t.recent = t.recent[len(t.recent)-maxRecentPoints:]
	}

	dx := x - t.origin.x
	dy := y - t.origin.y

	// Movement past the jitter threshold turns the press into a swipe, which
	// cancels a hold that has not fired yet.
	if t.longPressTimer != nil && !t.longPressFired && math.Hypot(dx, dy) > t.cfg.JitterThreshold {
		t.longPressTimer.Stop()
		t.longPressTimer = nil
	}

	e := t.env()
	if !t.scrubbing && !e.DetailsOpen &&
		t.cfg.InProgressZone(t.origin.y, e.ViewportHeight) &&
		math.Abs(dx) > math.Abs(dy) {
		t.scrubbing = true
	}

	var scrub *Intent
	if t.scrubbing {
		i := t.intentLocked(ProgressScrub, e)
		i.Progress = scrubFraction(x, e.ViewportWidth)
		scrub = &i
	}
	t.mu.Unlock()

	if scrub != nil {
		t.emit(*scrub)
	}
}

// End releases the interaction and emits its classified intent.
// A None intent is emitted for inconclusive interactions so the host can snap back.
func (t *Tracker) End(x, y float64, at time.Time) {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}

	t.last = point{x: x, y: y, at: at}
	e := t.env()

	var out Intent
	switch {
	case t.longPressFired:
		out = t.intentLocked(LongPressEnd, e)
	case t.scrubbing:
		out = t.intentLocked(ProgressScrub, e)
		out.Progress = scrubFraction(x, e.ViewportWidth)
		out.Final = true
	default:
		out = Classify(t.cfg, e, t.sampleLocked())
	}

	t.resetLocked()
	t.mu.Unlock()

	t.emit(out)
}

// Reset discards any interaction in flight and cancels pending timers.
// It is called on navigation and teardown so stale state never leaks across sessions.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.resetLocked()
	t.mu.Unlock()
}

func (t *Tracker) fireLongPress(gen uint64) {
	t.mu.Lock()
	if !t.active || gen != t.gen || t.longPressFired {
		t.mu.Unlock()
		return
	}

	dx := t.last.x - t.origin.x
	dy := t.last.y - t.origin.y
	if math.Hypot(dx, dy) > t.cfg.JitterThreshold {
		t.mu.Unlock()
		return
	}

	t.longPressFired = true
	out := t.intentLocked(LongPressStart, t.env())
	t.mu.Unlock()

	t.emit(out)
}

func (t *Tracker) resetLocked() {
	if t.longPressTimer != nil {
		t.longPressTimer.Stop()
		t.longPressTimer = nil
	}
	t.gen++
	t.active = false
	t.scrubbing = false
	t.longPressFired = false
	t.recent = t.recent[:0]
}

func (t *Tracker) sampleLocked() Sample {
	vx, vy := t.releaseVelocityLocked()
	return Sample{
		OriginX:   t.origin.x,
		OriginY:   t.origin.y,
		DX:        t.last.x - t.origin.x,
		DY:        t.last.y - t.origin.y,
		VelocityX: vx,
		VelocityY: vy,
		Duration:  t.last.at.Sub(t.origin.at),
	}
}

func (t *Tracker) intentLocked(kind Kind, e Environment) Intent {
	vx, vy := t.releaseVelocityLocked()
	return Intent{
		Kind:       kind,
		DX:         t.last.x - t.origin.x,
		DY:         t.last.y - t.origin.y,
		VelocityX:  vx,
		VelocityY:  vy,
		Duration:   t.last.at.Sub(t.origin.at),
		OriginX:    t.origin.x,
		OriginY:    t.origin.y,
		OriginHalf: originHalf(t.origin.x, e.ViewportWidth),
	}
}

// releaseVelocityLocked estimates the px/ms velocity over the recent move window.
func (t *Tracker) releaseVelocityLocked() (vx, vy float64) {
	anchor := t.origin
	for _, p := range t.recent {
		if t.last.at.Sub(p.at) <= velocityWindow {
			anchor = p
			break
		}
	}

	dt := float64(t.last.at.Sub(anchor.at).Milliseconds())
	if dt <= 0 {
		dt = float64(t.last.at.Sub(t.origin.at).Milliseconds())
		anchor = t.origin
	}
	if dt <= 0 {
		return 0, 0
	}

	return (t.last.x - anchor.x) / dt, (t.last.y - anchor.y) / dt
}
