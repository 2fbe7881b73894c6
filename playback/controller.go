package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reelnotes/reelnotes/anim"
	"github.com/reelnotes/reelnotes/feed"
	"github.com/reelnotes/reelnotes/gesture"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/log"
	"github.com/reelnotes/reelnotes/media"
	"github.com/reelnotes/reelnotes/videosvc"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

const (
	exitAnimDuration  = 250 * time.Millisecond
	slideAnimDuration = 200 * time.Millisecond
	snapAnimDuration  = 150 * time.Millisecond
)

// Hooks are the callbacks the host container observes. Nil hooks are skipped.
// Hooks run on the controller's calling goroutine and must not call back into
// the controller synchronously.
type Hooks struct {
	// OnRequestClose fires exactly once when an exit completes or an external
	// close finishes. The host dismisses the player view.
	OnRequestClose func()

	// OnIndexChanged fires when a navigate gesture lands on a new feed index.
	OnIndexChanged func(newIndex int)

	// OnOpenDetails fires when a reveal gesture opens the details panel.
	OnOpenDetails func(ref videosvc.VideoRef)

	// OnStateChanged fires with a fresh snapshot after every observable change.
	OnStateChanged func(Snapshot)

	// OnOffsetChanged carries transition animation frames (x, y displacement).
	OnOffsetChanged func(dx, dy float64)

	// OnError fires when a session enters Errored, with the classified failure.
	OnError func(err error)
}

// Controller is the player state machine. It receives classified gesture
// intents and media surface events, drives the surface and the animator, and
// reports to the host through Hooks.
//
// External callers may invoke it from any goroutine; a mutex serializes the
// machine so it stays effectively single-writer.
type Controller struct {
	mu sync.Mutex

	// loadMu serializes surface binds. A resolution already past the session
	// guard when the user navigates away must not land after the new
	// session's bind.
	loadMu sync.Mutex

	surface  media.Surface
	service  videosvc.Service
	animator *anim.Animator
	prefs    *Preferences
	viewport func() (w, h float64)
	hooks    Hooks

	nav     feed.Context
	session *Session
	nextID  uint64

	holdSpeed     float64
	autoHideDelay time.Duration
	tapRightMutes bool
}

// NewController wires a controller to its collaborators. The surface's event
// stream is subscribed immediately.
func NewController(
	surface media.Surface,
	service videosvc.Service,
	prefs *Preferences,
	animator *anim.Animator,
	viewport func() (w, h float64),
	hooks Hooks,
) *Controller {
	c := &Controller{
		surface:       surface,
		service:       service,
		animator:      animator,
		prefs:         prefs,
		viewport:      viewport,
		hooks:         hooks,
		holdSpeed:     viper.GetFloat64(key.PlayerHoldSpeed),
		autoHideDelay: time.Duration(viper.GetInt(key.PlayerProgressAutoHideMs)) * time.Millisecond,
		tapRightMutes: viper.GetBool(key.PlayerTapRightMutes),
	}
	if c.holdSpeed <= 1 {
		c.holdSpeed = 2.0
	}
	if c.autoHideDelay <= 0 {
		c.autoHideDelay = 2 * time.Second
	}
	surface.Subscribe(c.HandleMedia)
	return c
}

// Open binds the player to the feed's current note and starts loading it.
func (c *Controller) Open(ctx context.Context, nav feed.Context) error {
	c.mu.Lock()
	note, ok := nav.Current().Get()
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("open player: nothing to play")
	}
	c.nav = nav
	if c.session != nil {
		c.session.teardown(c.surface)
	}
	id := c.bindLocked(note)
	c.mu.Unlock()

	go c.resolveAndLoad(ctx, id, note, false)
	return nil
}

// Snapshot returns the current session view, if a session is bound.
func (c *Controller) Snapshot() mo.Option[Snapshot] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return mo.None[Snapshot]()
	}
	return mo.Some(c.session.snapshot())
}

// Environment exposes the classifier context for the gesture tracker.
func (c *Controller) Environment() gesture.Environment {
	w, h := c.viewport()

	c.mu.Lock()
	defer c.mu.Unlock()

	env := gesture.Environment{
		ViewportWidth:   w,
		ViewportHeight:  h,
		CanNavigateNext: c.nav.CanNext(),
		CanNavigatePrev: c.nav.CanPrev(),
	}
	if c.session != nil {
		env.DetailsOpen = c.session.detailsOpen
	}
	return env
}

// Apply consumes one classified gesture intent.
func (c *Controller) Apply(i gesture.Intent) {
	c.mu.Lock()
	after := c.applyLocked(i)
	c.mu.Unlock()

	// Animations start outside the lock; their completions re-enter it.
	if after != nil {
		after()
	}
}

func (c *Controller) applyLocked(i gesture.Intent) func() {
	s := c.session
	if s == nil || !s.state.Live() {
		return nil
	}

	switch i.Kind {
	case gesture.None:
		return c.snapBackAnim(i.DX, i.DY)

	case gesture.Tap:
		c.tapLocked(i)

	case gesture.LongPressStart:
		if s.state == Errored {
			return nil
		}
		if err := c.surface.SetRate(c.holdSpeed); err != nil {
			log.Warnf("set hold speed: %v", err)
			return nil
		}
		s.speedActive = true
		c.notifyLocked()

	case gesture.LongPressEnd:
		if !s.speedActive {
			return nil
		}
		_ = c.surface.SetRate(1.0)
		s.speedActive = false
		c.notifyLocked()

	case gesture.VerticalUpReveal:
		if s.detailsOpen {
			return nil
		}
		s.detailsOpen = true
		c.notifyLocked()
		if c.hooks.OnOpenDetails != nil {
			c.hooks.OnOpenDetails(s.note.Ref())
		}

	case gesture.HorizontalExit, gesture.VerticalDownExit, gesture.DiagonalExit:
		return c.beginCloseLocked(i)

	case gesture.NavigateNext:
		return c.navigateLocked(1, i)

	case gesture.NavigatePrev:
		return c.navigateLocked(-1, i)

	case gesture.ProgressScrub:
		c.scrubLocked(i)
	}

	return nil
}

func (c *Controller) tapLocked(i gesture.Intent) {
	s := c.session
	if s.state == Errored || s.state == Loading {
		return
	}

	if c.tapRightMutes && i.OriginHalf == gesture.RightHalf {
		c.toggleMuteLocked()
		return
	}

	switch s.state {
	case Ready, Paused:
		if err := c.surface.Play(); err != nil {
			log.Warnf("play: %v", err)
			return
		}
		s.state = Playing
		c.notifyLocked()
	case Playing:
		if err := c.surface.Pause(); err != nil {
			log.Warnf("pause: %v", err)
			return
		}
		s.state = Paused
		c.notifyLocked()
	}
}

// toggleMuteLocked flips the orthogonal mute sub-state. The first unmute of
// any session latches the sticky preference that seeds later sessions.
func (c *Controller) toggleMuteLocked() {
	s := c.session
	s.muted = !s.muted
	if err := c.surface.SetMuted(s.muted); err != nil {
		log.Warnf("set muted: %v", err)
	}
	if !s.muted {
		if err := c.prefs.MarkUserUnmuted(); err != nil {
			log.Warnf("persist unmute preference: %v", err)
		}
	}
	c.notifyLocked()
}

func (c *Controller) scrubLocked(i gesture.Intent) {
	s := c.session

	if s.duration > 0 {
		target := i.Progress * s.duration
		if err := c.surface.SeekTo(target); err != nil {
			log.Warnf("seek: %v", err)
		} else {
			s.position = target
		}
	}

	s.progressVisible = true
	c.notifyLocked()

	// Restart the auto-hide countdown; the timer is guarded by the session id.
	s.cancelAutoHide()
	id := s.id
	s.autoHide = time.AfterFunc(c.autoHideDelay, func() {
		c.hideProgress(id)
	})
}

func (c *Controller) hideProgress(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.id != id || s.tornDown {
		return
	}
	if !s.progressVisible {
		return
	}
	s.progressVisible = false
	c.notifyLocked()
}

// beginCloseLocked starts the exit transition for one of the exit gestures.
func (c *Controller) beginCloseLocked(i gesture.Intent) func() {
	s := c.session
	if s.state == Closing || s.state == Closed {
		return nil
	}

	s.state = Closing
	s.cancelAutoHide()
	if s.speedActive {
		_ = c.surface.SetRate(1.0)
		s.speedActive = false
	}
	// Stop audio before the exit animation runs
	_ = c.surface.Pause()
	c.notifyLocked()

	w, h := c.viewport()
	fromX, fromY := i.DX, i.DY
	var toX, toY float64
	switch i.Kind {
	case gesture.VerticalDownExit:
		toY = h
	case gesture.DiagonalExit:
		toX, toY = w, h
	default:
		toX = w
	}

	id := s.id
	return func() {
		c.animator.Animate(0, 1, exitAnimDuration,
			c.offsetFrame(fromX, fromY, toX, toY),
			func() { c.finishClose(id) })
	}
}

func (c *Controller) finishClose(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.id != id || s.state != Closing {
		return
	}

	s.teardown(c.surface)
	s.state = Closed
	c.notifyLocked()
	c.session = nil

	if c.hooks.OnRequestClose != nil {
		c.hooks.OnRequestClose()
	}
}

// Close tears the player down without an exit animation (external close).
// It is safe to call repeatedly; only the first call reaches the host hook.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.state == Closing || s.state == Closed {
		return
	}

	s.state = Closing
	c.notifyLocked()

	s.teardown(c.surface)
	s.state = Closed
	c.notifyLocked()
	c.session = nil

	if c.hooks.OnRequestClose != nil {
		c.hooks.OnRequestClose()
	}
}

// navigateLocked tears down the current session and binds the adjacent item.
// Ownership of the surface transfers atomically: the old session is unbound
// before the new one loads, so two items never play audio at once.
func (c *Controller) navigateLocked(dir int, i gesture.Intent) func() {
	if dir > 0 && !c.nav.CanNext() {
		return c.snapBackAnim(i.DX, i.DY)
	}
	if dir < 0 && !c.nav.CanPrev() {
		return c.snapBackAnim(i.DX, i.DY)
	}

	c.session.teardown(c.surface)

	if dir > 0 {
		c.nav.Next()
	} else {
		c.nav.Prev()
	}
	if c.hooks.OnIndexChanged != nil {
		c.hooks.OnIndexChanged(c.nav.Index)
	}

	note := c.nav.Current().MustGet()
	id := c.bindLocked(note)

	w, _ := c.viewport()
	fromX := i.DX
	toX := w
	if dir > 0 {
		toX = -w
	}

	ctx := context.Background()
	return func() {
		go c.resolveAndLoad(ctx, id, note, false)
		c.animator.Animate(0, 1, slideAnimDuration,
			c.offsetFrame(fromX, 0, toX, 0),
			func() {
				if c.hooks.OnOffsetChanged != nil {
					c.hooks.OnOffsetChanged(0, 0)
				}
			})
	}
}

// bindLocked constructs the next session in Loading state. The initial mute
// state is seeded from config and the sticky unmute preference.
func (c *Controller) bindLocked(note videosvc.Note) uint64 {
	c.nextID++
	c.session = &Session{
		id:       c.nextID,
		note:     note,
		state:    Loading,
		muted:    viper.GetBool(key.PlayerStartMuted) && !c.prefs.HasUserUnmuted(),
		duration: note.Duration.Seconds(),
	}
	c.notifyLocked()
	return c.nextID
}

// resolveAndLoad fetches a playback URL and binds the surface to it.
// Every step is guarded by the session id; a stale completion is a no-op.
func (c *Controller) resolveAndLoad(ctx context.Context, id uint64, note videosvc.Note, refresh bool) {
	var (
		url videosvc.PlaybackURL
		err error
	)
	if refresh {
		url, err = c.service.RefreshPlaybackURL(ctx, note.Ref())
	} else {
		url, err = c.service.GetPlaybackURL(ctx, note.Ref())
	}
	if err != nil {
		c.mu.Lock()
		c.failLocked(id, &LoadError{Ref: note.Ref(), Err: err})
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	s := c.session
	if s == nil || s.id != id || s.tornDown {
		c.mu.Unlock()
		return
	}
	s.url = url
	c.mu.Unlock()

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// Re-check under the bind lock: the session may have been replaced while
	// an earlier bind held it.
	c.mu.Lock()
	s = c.session
	if s == nil || s.id != id || s.tornDown {
		c.mu.Unlock()
		return
	}
	s.loadIssued = true
	c.mu.Unlock()

	if err := c.surface.Load(url.URL, note.Title, url.Headers); err != nil {
		c.handleFailure(id, err)
	}
}

// HandleMedia consumes one media surface event.
func (c *Controller) HandleMedia(e media.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || !s.state.Live() || s.tornDown {
		return
	}

	switch e.Kind {
	case media.EventLoaded:
		// A load completion from a previous session's bind is not ours.
		if s.state == Loading && s.loadIssued {
			c.enterReadyLocked()
		}

	case media.EventPlaying:
		if s.state == Ready || s.state == Paused {
			s.state = Playing
			c.notifyLocked()
		}

	case media.EventTime:
		s.position = e.Position
		if e.Duration > 0 {
			s.duration = e.Duration
		}
		c.notifyLocked()

	case media.EventPaused:
		if s.state == Playing {
			s.state = Paused
			c.notifyLocked()
		}

	case media.EventEnded:
		// Short clips loop
		s.position = 0
		_ = c.surface.SeekTo(0)
		_ = c.surface.Play()

	case media.EventError:
		id := s.id
		c.mu.Unlock()
		c.handleFailure(id, e.Err)
		c.mu.Lock()
	}
}

// enterReadyLocked applies the seeded mute state and attempts autoplay.
// A rejected autoplay leaves the session Ready; a later tap plays.
func (c *Controller) enterReadyLocked() {
	s := c.session

	if err := c.surface.SetMuted(s.muted); err != nil {
		log.Warnf("seed mute state: %v", err)
	}

	s.state = Ready
	c.notifyLocked()

	if err := c.surface.Play(); err != nil {
		log.Infof("autoplay rejected, staying ready: %v", err)
		return
	}
	s.state = Playing
	c.notifyLocked()
}

// handleFailure classifies a media failure. A failure on an expired signed URL
// gets the session's single refresh-and-retry; everything else is terminal.
func (c *Controller) handleFailure(id uint64, cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.id != id || s.tornDown || !s.state.Live() {
		return
	}

	expired := errors.Is(cause, ErrURLExpired) || s.url.Expired(time.Now())
	if expired && !s.refreshed {
		s.refreshed = true
		if s.state != Loading {
			s.state = Loading
		}
		c.notifyLocked()
		log.Infof("playback url expired for %s, refreshing", s.note.ID)
		go c.resolveAndLoad(context.Background(), id, s.note, true)
		return
	}

	c.failLocked(id, c.classifyFailureLocked(cause))
}

func (c *Controller) classifyFailureLocked(cause error) error {
	s := c.session
	if s.state == Playing || s.state == Paused {
		return &PlaybackError{Ref: s.note.Ref(), Err: cause}
	}
	return &LoadError{Ref: s.note.Ref(), Err: cause}
}

// failLocked moves the session to Errored and stops side activity.
func (c *Controller) failLocked(id uint64, err error) {
	s := c.session
	if s == nil || s.id != id || s.tornDown || !s.state.Live() {
		return
	}

	s.state = Errored
	s.cancelAutoHide()
	if s.speedActive {
		_ = c.surface.SetRate(1.0)
		s.speedActive = false
	}
	_ = c.surface.Pause()
	c.notifyLocked()

	log.Error(err)
	if c.hooks.OnError != nil {
		c.hooks.OnError(err)
	}
}

// CloseDetails marks the details panel closed. Called by the host when the
// panel's own close affordance fires.
func (c *Controller) CloseDetails() {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || !s.detailsOpen {
		return
	}
	s.detailsOpen = false
	c.notifyLocked()
}

// snapBackAnim returns a deferred snap-back of the drag offset to origin.
func (c *Controller) snapBackAnim(fromX, fromY float64) func() {
	if fromX == 0 && fromY == 0 {
		return nil
	}
	return func() {
		c.animator.Animate(0, 1, snapAnimDuration,
			c.offsetFrame(fromX, fromY, 0, 0), nil)
	}
}

// offsetFrame maps animator progress onto an (x, y) offset path.
func (c *Controller) offsetFrame(fromX, fromY, toX, toY float64) func(float64) {
	return func(t float64) {
		if c.hooks.OnOffsetChanged == nil {
			return
		}
		c.hooks.OnOffsetChanged(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

func (c *Controller) notifyLocked() {
	if c.hooks.OnStateChanged == nil || c.session == nil {
		return
	}
	c.hooks.OnStateChanged(c.session.snapshot())
}
