package playback

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/reelnotes/reelnotes/anim"
	"github.com/reelnotes/reelnotes/feed"
	"github.com/reelnotes/reelnotes/filesystem"
	"github.com/reelnotes/reelnotes/gesture"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/media"
	"github.com/reelnotes/reelnotes/videosvc"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.PlayerStartMuted, true)
	viper.Set(key.PlayerHoldSpeed, 2.0)
	viper.Set(key.PlayerTapRightMutes, true)
	viper.Set(key.PlayerProgressAutoHideMs, 60)
}

type fakeSurface struct {
	mu   sync.Mutex
	subs []func(media.Event)

	loads      []string
	attempts   []string
	loadGate   chan struct{} // loads of gateURL block until this closes
	gateURL    string
	playCalls  int
	pauseCalls int
	rate       float64
	muted      bool
	closed     bool

	playErr error
	loadErr error

	done chan struct{}
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{rate: 1.0, done: make(chan struct{})}
}

func (f *fakeSurface) Load(url, title string, headers map[string]string) error {
	f.mu.Lock()
	f.attempts = append(f.attempts, url)
	gate := f.loadGate
	gated := gate != nil && strings.Contains(url, f.gateURL)
	f.mu.Unlock()
	if gated {
		<-gate
	}
	f.mu.Lock()
	f.loads = append(f.loads, url)
	err := f.loadErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.emit(media.Event{Kind: media.EventLoaded})
	return nil
}

func (f *fakeSurface) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.playCalls++
	return nil
}

func (f *fakeSurface) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauseCalls++
	return nil
}

func (f *fakeSurface) SeekTo(seconds float64) error { return nil }

func (f *fakeSurface) SetMuted(muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
	return nil
}

func (f *fakeSurface) SetRate(rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = rate
	return nil
}

func (f *fakeSurface) Position() (float64, error) { return 0, nil }
func (f *fakeSurface) Duration() (float64, error) { return 0, nil }

func (f *fakeSurface) Subscribe(fn func(media.Event)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
}

func (f *fakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSurface) Done() <-chan struct{} { return f.done }

func (f *fakeSurface) emit(e media.Event) {
	f.mu.Lock()
	subs := make([]func(media.Event), len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(e)
	}
}

func (f *fakeSurface) stats() (plays, pauses int, rate float64, muted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playCalls, f.pauseCalls, f.rate, f.muted
}

type fakeService struct {
	mu           sync.Mutex
	getCalls     int
	refreshCalls int
	refreshErr   error
}

func (s *fakeService) Feed(ctx context.Context) ([]videosvc.Note, error) {
	return nil, nil
}

func (s *fakeService) GetPlaybackURL(ctx context.Context, ref videosvc.VideoRef) (videosvc.PlaybackURL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	return videosvc.PlaybackURL{URL: "https://cdn.example.com/" + ref.ID + ".mp4"}, nil
}

func (s *fakeService) RefreshPlaybackURL(ctx context.Context, ref videosvc.VideoRef) (videosvc.PlaybackURL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++
	if s.refreshErr != nil {
		return videosvc.PlaybackURL{}, s.refreshErr
	}
	return videosvc.PlaybackURL{URL: "https://cdn.example.com/" + ref.ID + ".mp4?sig=fresh"}, nil
}

func (s *fakeService) calls() (gets, refreshes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls, s.refreshCalls
}

type hookLog struct {
	mu        sync.Mutex
	closes    int
	indexes   []int
	details   []string
	errs      []error
	lastState State
}

func (h *hookLog) hooks() Hooks {
	return Hooks{
		OnRequestClose: func() {
			h.mu.Lock()
			h.closes++
			h.mu.Unlock()
		},
		OnIndexChanged: func(i int) {
			h.mu.Lock()
			h.indexes = append(h.indexes, i)
			h.mu.Unlock()
		},
		OnOpenDetails: func(ref videosvc.VideoRef) {
			h.mu.Lock()
			h.details = append(h.details, ref.ID)
			h.mu.Unlock()
		},
		OnStateChanged: func(s Snapshot) {
			h.mu.Lock()
			h.lastState = s.State
			h.mu.Unlock()
		},
		OnError: func(err error) {
			h.mu.Lock()
			h.errs = append(h.errs, err)
			h.mu.Unlock()
		},
	}
}

func (h *hookLog) closeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closes
}

func testFeed() feed.Context {
	return feed.Context{Items: []videosvc.Note{
		{ID: "n1", Title: "First", Duration: 20 * time.Second},
		{ID: "n2", Title: "Second", Duration: 15 * time.Second},
	}}
}

func newTestController(surface *fakeSurface, svc *fakeService, hooks Hooks) *Controller {
	return NewController(
		surface,
		svc,
		NewPreferences(),
		anim.NewWithInterval(2*time.Millisecond),
		func() (float64, float64) { return 400, 800 },
		hooks,
	)
}

func eventually(f func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func (c *Controller) stateIs(s State) func() bool {
	return func() bool {
		snap, ok := c.Snapshot().Get()
		return ok && snap.State == s
	}
}

func openAndWait(c *Controller, want State) bool {
	if err := c.Open(context.Background(), testFeed()); err != nil {
		return false
	}
	return eventually(c.stateIs(want))
}

func TestControllerOpenAndTap(t *testing.T) {
	Convey("Given an opened controller", t, func() {
		surface := newFakeSurface()
		svc := &fakeService{}
		hooks := &hookLog{}
		c := newTestController(surface, svc, hooks.hooks())

		Convey("Open loads the current note and autoplays", func() {
			So(openAndWait(c, Playing), ShouldBeTrue)

			plays, _, _, _ := surface.stats()
			So(plays, ShouldEqual, 1)
			So(surface.loads, ShouldResemble, []string{"https://cdn.example.com/n1.mp4"})
		})

		Convey("A rejected autoplay leaves the session Ready and a tap plays", func() {
			surface.playErr = errors.New("autoplay rejected")
			So(openAndWait(c, Ready), ShouldBeTrue)

			surface.mu.Lock()
			surface.playErr = nil
			surface.mu.Unlock()

			c.Apply(gesture.Intent{Kind: gesture.Tap, OriginHalf: gesture.LeftHalf})
			snap, _ := c.Snapshot().Get()
			So(snap.State, ShouldEqual, Playing)

			plays, _, _, _ := surface.stats()
			So(plays, ShouldEqual, 1)
		})

		Convey("Taps on the left half toggle play and pause", func() {
			So(openAndWait(c, Playing), ShouldBeTrue)

			c.Apply(gesture.Intent{Kind: gesture.Tap, OriginHalf: gesture.LeftHalf})
			snap, _ := c.Snapshot().Get()
			So(snap.State, ShouldEqual, Paused)

			c.Apply(gesture.Intent{Kind: gesture.Tap, OriginHalf: gesture.LeftHalf})
			snap, _ = c.Snapshot().Get()
			So(snap.State, ShouldEqual, Playing)
		})
	})
}

func TestControllerMute(t *testing.T) {
	Convey("Given the tap-right-mutes variant", t, func() {
		surface := newFakeSurface()
		svc := &fakeService{}
		hooks := &hookLog{}
		c := newTestController(surface, svc, hooks.hooks())

		Convey("A session starts muted until the sticky preference is set", func() {
			So(openAndWait(c, Playing), ShouldBeTrue)

			snap, _ := c.Snapshot().Get()
			So(snap.Muted, ShouldBeTrue)

			Convey("A right-half tap unmutes without touching playback", func() {
				c.Apply(gesture.Intent{Kind: gesture.Tap, OriginHalf: gesture.RightHalf})

				snap, _ := c.Snapshot().Get()
				So(snap.Muted, ShouldBeFalse)
				So(snap.State, ShouldEqual, Playing)

				Convey("And the next session starts unmuted", func() {
					c.Close()

					c2 := newTestController(newFakeSurface(), &fakeService{}, Hooks{})
					So(openAndWait(c2, Playing), ShouldBeTrue)

					snap, _ := c2.Snapshot().Get()
					So(snap.Muted, ShouldBeFalse)
				})
			})
		})
	})
}

func TestControllerSpeedHold(t *testing.T) {
	Convey("Given a playing session", t, func() {
		surface := newFakeSurface()
		c := newTestController(surface, &fakeService{}, Hooks{})
		So(openAndWait(c, Playing), ShouldBeTrue)

		Convey("A speed hold doubles the rate and release resets it", func() {
			c.Apply(gesture.Intent{Kind: gesture.LongPressStart})
			_, _, rate, _ := surface.stats()
			So(rate, ShouldEqual, 2.0)

			snap, _ := c.Snapshot().Get()
			So(snap.SpeedActive, ShouldBeTrue)

			c.Apply(gesture.Intent{Kind: gesture.LongPressEnd})
			_, _, rate, _ = surface.stats()
			So(rate, ShouldEqual, 1.0)
		})

		Convey("A release without an active hold is a no-op", func() {
			c.Apply(gesture.Intent{Kind: gesture.LongPressEnd})
			_, _, rate, _ := surface.stats()
			So(rate, ShouldEqual, 1.0)
		})

		Convey("Navigation resets an active hold", func() {
			c.Apply(gesture.Intent{Kind: gesture.LongPressStart})
			c.Apply(gesture.Intent{Kind: gesture.NavigateNext, DX: -120})

			So(eventually(func() bool {
				_, _, rate, _ := surface.stats()
				return rate == 1.0
			}), ShouldBeTrue)
		})
	})
}

func TestControllerExit(t *testing.T) {
	Convey("Given a playing session", t, func() {
		surface := newFakeSurface()
		svc := &fakeService{}
		hooks := &hookLog{}
		c := newTestController(surface, svc, hooks.hooks())
		So(openAndWait(c, Playing), ShouldBeTrue)

		Convey("A horizontal exit reaches Closed and requests close exactly once", func() {
			c.Apply(gesture.Intent{Kind: gesture.HorizontalExit, DX: 120, VelocityX: 0.6})

			So(eventually(func() bool { return hooks.closeCount() == 1 }), ShouldBeTrue)
			So(c.Snapshot().IsAbsent(), ShouldBeTrue)

			_, pauses, _, _ := surface.stats()
			So(pauses, ShouldBeGreaterThanOrEqualTo, 1)

			Convey("And a second close is a no-op", func() {
				c.Close()
				So(hooks.closeCount(), ShouldEqual, 1)
			})
		})

		Convey("An external close tears down synchronously and only once", func() {
			c.Close()
			c.Close()
			So(hooks.closeCount(), ShouldEqual, 1)
			So(c.Snapshot().IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestControllerNavigation(t *testing.T) {
	Convey("Given a playing session on the first of two notes", t, func() {
		surface := newFakeSurface()
		svc := &fakeService{}
		hooks := &hookLog{}
		c := newTestController(surface, svc, hooks.hooks())
		So(openAndWait(c, Playing), ShouldBeTrue)

		Convey("Navigate-next tears down the old binding and loads the next note", func() {
			c.Apply(gesture.Intent{Kind: gesture.NavigateNext, DX: -120})

			So(eventually(func() bool {
				snap, ok := c.Snapshot().Get()
				return ok && snap.Note.ID == "n2" && snap.State == Playing
			}), ShouldBeTrue)

			hooks.mu.Lock()
			So(hooks.indexes, ShouldResemble, []int{1})
			hooks.mu.Unlock()

			// Old media paused before the new one was bound
			_, pauses, _, _ := surface.stats()
			So(pauses, ShouldBeGreaterThanOrEqualTo, 1)

			surface.mu.Lock()
			So(surface.loads, ShouldHaveLength, 2)
			So(surface.loads[1], ShouldContainSubstring, "n2")
			surface.mu.Unlock()

			Convey("Navigating past the end snaps back instead", func() {
				c.Apply(gesture.Intent{Kind: gesture.NavigateNext, DX: -120})

				snap, _ := c.Snapshot().Get()
				So(snap.Note.ID, ShouldEqual, "n2")

				hooks.mu.Lock()
				So(hooks.indexes, ShouldHaveLength, 1)
				hooks.mu.Unlock()
			})
		})
	})
}

func TestControllerSlowLoadNavigation(t *testing.T) {
	Convey("Given a first load stuck in flight", t, func() {
		surface := newFakeSurface()
		surface.loadGate = make(chan struct{})
		surface.gateURL = "n1"
		svc := &fakeService{}
		hooks := &hookLog{}
		c := newTestController(surface, svc, hooks.hooks())

		So(c.Open(context.Background(), testFeed()), ShouldBeNil)
		So(eventually(func() bool {
			surface.mu.Lock()
			defer surface.mu.Unlock()
			return len(surface.attempts) == 1
		}), ShouldBeTrue)

		Convey("Navigating away before it lands leaves the surface on the new note", func() {
			c.Apply(gesture.Intent{Kind: gesture.NavigateNext, DX: -120})

			So(eventually(func() bool {
				gets, _ := svc.calls()
				return gets == 2
			}), ShouldBeTrue)

			close(surface.loadGate)

			So(eventually(func() bool {
				snap, ok := c.Snapshot().Get()
				return ok && snap.Note.ID == "n2" && snap.State == Playing
			}), ShouldBeTrue)

			surface.mu.Lock()
			So(surface.loads[len(surface.loads)-1], ShouldContainSubstring, "n2")
			surface.mu.Unlock()
		})
	})
}

func TestControllerReopen(t *testing.T) {
	Convey("Given a playing session", t, func() {
		surface := newFakeSurface()
		svc := &fakeService{}
		hooks := &hookLog{}
		c := newTestController(surface, svc, hooks.hooks())
		So(openAndWait(c, Playing), ShouldBeTrue)

		Convey("Opening again pauses and tears down the old session first", func() {
			next := testFeed()
			next.Index = 1
			So(c.Open(context.Background(), next), ShouldBeNil)

			So(eventually(func() bool {
				snap, ok := c.Snapshot().Get()
				return ok && snap.Note.ID == "n2" && snap.State == Playing
			}), ShouldBeTrue)

			_, pauses, _, _ := surface.stats()
			So(pauses, ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}

func TestControllerDetails(t *testing.T) {
	Convey("Given a playing session", t, func() {
		surface := newFakeSurface()
		hooks := &hookLog{}
		c := newTestController(surface, &fakeService{}, hooks.hooks())
		So(openAndWait(c, Playing), ShouldBeTrue)

		Convey("A reveal gesture opens the details panel", func() {
			c.Apply(gesture.Intent{Kind: gesture.VerticalUpReveal, DY: -40})

			snap, _ := c.Snapshot().Get()
			So(snap.DetailsOpen, ShouldBeTrue)
			So(c.Environment().DetailsOpen, ShouldBeTrue)

			hooks.mu.Lock()
			So(hooks.details, ShouldResemble, []string{"n1"})
			hooks.mu.Unlock()

			Convey("CloseDetails reopens gesture handling", func() {
				c.CloseDetails()
				So(c.Environment().DetailsOpen, ShouldBeFalse)
			})
		})
	})
}

func TestControllerScrub(t *testing.T) {
	Convey("Given a playing session with a 20s duration", t, func() {
		surface := newFakeSurface()
		c := newTestController(surface, &fakeService{}, Hooks{})
		So(openAndWait(c, Playing), ShouldBeTrue)

		c.HandleMedia(media.Event{Kind: media.EventTime, Position: 1, Duration: 20})

		Convey("A scrub to half the track seeks to 10s and shows the bar", func() {
			c.Apply(gesture.Intent{Kind: gesture.ProgressScrub, Progress: 0.5, Final: true})

			snap, _ := c.Snapshot().Get()
			So(snap.Position, ShouldEqual, 10.0)
			So(snap.ProgressVisible, ShouldBeTrue)

			Convey("And the bar auto-hides after the configured delay", func() {
				So(eventually(func() bool {
					snap, ok := c.Snapshot().Get()
					return ok && !snap.ProgressVisible
				}), ShouldBeTrue)
			})
		})
	})
}

func TestControllerURLRefresh(t *testing.T) {
	Convey("Given a session whose playback URL expires", t, func() {
		surface := newFakeSurface()
		svc := &fakeService{}
		hooks := &hookLog{}
		c := newTestController(surface, svc, hooks.hooks())
		So(openAndWait(c, Playing), ShouldBeTrue)

		Convey("The first expiry refreshes the URL and rebinds", func() {
			surface.emit(media.Event{Kind: media.EventError, Err: ErrURLExpired})

			So(eventually(func() bool {
				_, refreshes := svc.calls()
				return refreshes == 1
			}), ShouldBeTrue)

			So(eventually(c.stateIs(Playing)), ShouldBeTrue)

			surface.mu.Lock()
			So(surface.loads[len(surface.loads)-1], ShouldContainSubstring, "sig=fresh")
			surface.mu.Unlock()

			Convey("A second expiry is terminal", func() {
				surface.emit(media.Event{Kind: media.EventError, Err: ErrURLExpired})

				So(eventually(c.stateIs(Errored)), ShouldBeTrue)

				_, refreshes := svc.calls()
				So(refreshes, ShouldEqual, 1)

				hooks.mu.Lock()
				So(hooks.errs, ShouldHaveLength, 1)
				hooks.mu.Unlock()
			})
		})

		Convey("A failed refresh is terminal", func() {
			svc.mu.Lock()
			svc.refreshErr = errors.New("service unavailable")
			svc.mu.Unlock()

			surface.emit(media.Event{Kind: media.EventError, Err: ErrURLExpired})

			So(eventually(c.stateIs(Errored)), ShouldBeTrue)

			hooks.mu.Lock()
			So(hooks.errs, ShouldHaveLength, 1)
			hooks.mu.Unlock()
		})
	})
}

func TestControllerStaleEvents(t *testing.T) {
	Convey("Media events after teardown are no-ops", t, func() {
		surface := newFakeSurface()
		hooks := &hookLog{}
		c := newTestController(surface, &fakeService{}, hooks.hooks())
		So(openAndWait(c, Playing), ShouldBeTrue)

		c.Close()

		surface.emit(media.Event{Kind: media.EventError, Err: errors.New("late decode failure")})
		surface.emit(media.Event{Kind: media.EventTime, Position: 5, Duration: 20})

		So(c.Snapshot().IsAbsent(), ShouldBeTrue)
		So(hooks.closeCount(), ShouldEqual, 1)

		hooks.mu.Lock()
		So(hooks.errs, ShouldBeEmpty)
		hooks.mu.Unlock()
	})
}
