package gesture

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type intentRecorder struct {
	mu      sync.Mutex
	intents []Intent
}

func (r *intentRecorder) record(i Intent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, i)
}

func (r *intentRecorder) all() []Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Intent(nil), r.intents...)
}

func (r *intentRecorder) last() Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.intents[len(r.intents)-1]
}

func newTestTracker(env Environment) (*Tracker, *intentRecorder) {
	cfg := testConfig()
	// A short hold delay keeps the timer tests fast.
	cfg.LongPressDelay = 30 * time.Millisecond
	rec := &intentRecorder{}
	return NewTracker(cfg, func() Environment { return env }, rec.record), rec
}

func TestTrackerTapAndSwipe(t *testing.T) {
	Convey("Given a tracker over a 400x800 viewport", t, func() {
		tr, rec := newTestTracker(testEnv())
		t0 := time.Now()

		Convey("A quick stationary press emits a tap at release", func() {
			tr.Begin(300, 400, t0)
			tr.End(302, 401, t0.Add(100*time.Millisecond))

			So(rec.all(), ShouldHaveLength, 1)
			So(rec.last().Kind, ShouldEqual, Tap)
			So(rec.last().OriginHalf, ShouldEqual, RightHalf)
		})

		Convey("A leftward drag past the threshold emits navigate-next", func() {
			tr.Begin(300, 400, t0)
			tr.Move(240, 402, t0.Add(60*time.Millisecond))
			tr.Move(170, 405, t0.Add(120*time.Millisecond))
			tr.End(170, 405, t0.Add(130*time.Millisecond))

			So(rec.all(), ShouldHaveLength, 1)
			So(rec.last().Kind, ShouldEqual, NavigateNext)
			So(rec.last().DX, ShouldEqual, -130)
		})

		Convey("A sub-threshold drag emits a None intent so the host can snap back", func() {
			tr.Begin(200, 400, t0)
			tr.Move(230, 410, t0.Add(200*time.Millisecond))
			tr.End(230, 410, t0.Add(400*time.Millisecond))

			So(rec.all(), ShouldHaveLength, 1)
			So(rec.last().Kind, ShouldEqual, None)
		})

		Convey("Moves and releases without a begin emit nothing", func() {
			tr.Move(100, 100, t0)
			tr.End(100, 100, t0.Add(50*time.Millisecond))
			So(rec.all(), ShouldBeEmpty)
		})
	})
}

func TestTrackerLongPress(t *testing.T) {
	Convey("Given a tracker with a 30ms hold delay", t, func() {
		t0 := time.Now()

		Convey("A stationary right-half press fires the speed hold", func() {
			tr, rec := newTestTracker(testEnv())
			tr.Begin(300, 400, t0)
			time.Sleep(60 * time.Millisecond)
			tr.End(301, 400, t0.Add(200*time.Millisecond))

			intents := rec.all()
			So(intents, ShouldHaveLength, 2)
			So(intents[0].Kind, ShouldEqual, LongPressStart)
			So(intents[1].Kind, ShouldEqual, LongPressEnd)
		})

		Convey("A left-half press never arms the hold", func() {
			tr, rec := newTestTracker(testEnv())
			tr.Begin(100, 400, t0)
			time.Sleep(60 * time.Millisecond)
			tr.End(100, 400, t0.Add(400*time.Millisecond))

			So(rec.all(), ShouldHaveLength, 1)
			So(rec.last().Kind, ShouldEqual, None)
		})

		Convey("Movement past the jitter threshold cancels a pending hold", func() {
			tr, rec := newTestTracker(testEnv())
			tr.Begin(300, 400, t0)
			tr.Move(320, 400, t0.Add(10*time.Millisecond))
			time.Sleep(60 * time.Millisecond)
			tr.Move(390, 405, t0.Add(80*time.Millisecond))
			tr.End(390, 405, t0.Add(100*time.Millisecond))

			intents := rec.all()
			So(intents, ShouldHaveLength, 1)
			So(intents[0].Kind, ShouldEqual, NavigatePrev)
		})

		Convey("A press inside the scrub zone never arms the hold", func() {
			tr, rec := newTestTracker(testEnv())
			tr.Begin(300, 790, t0)
			time.Sleep(60 * time.Millisecond)
			tr.End(300, 790, t0.Add(200*time.Millisecond))

			So(rec.all(), ShouldHaveLength, 1)
			So(rec.last().Kind, ShouldNotEqual, LongPressEnd)
		})

		Convey("Reset cancels the pending hold timer", func() {
			tr, rec := newTestTracker(testEnv())
			tr.Begin(300, 400, t0)
			tr.Reset()
			time.Sleep(60 * time.Millisecond)

			So(rec.all(), ShouldBeEmpty)
		})

		Convey("A hold from a previous interaction never fires into the next one", func() {
			tr, rec := newTestTracker(testEnv())
			tr.Begin(300, 400, t0)
			tr.End(302, 400, t0.Add(10*time.Millisecond))
			tr.Begin(100, 400, t0.Add(20*time.Millisecond))
			time.Sleep(60 * time.Millisecond)
			tr.End(100, 400, t0.Add(200*time.Millisecond))

			for _, i := range rec.all() {
				So(i.Kind, ShouldNotEqual, LongPressStart)
				So(i.Kind, ShouldNotEqual, LongPressEnd)
			}
		})
	})
}

func TestTrackerScrub(t *testing.T) {
	Convey("Given a drag starting in the bottom progress zone", t, func() {
		tr, rec := newTestTracker(testEnv())
		t0 := time.Now()

		tr.Begin(100, 790, t0)
		tr.Move(150, 792, t0.Add(50*time.Millisecond))
		tr.Move(200, 791, t0.Add(100*time.Millisecond))
		tr.End(200, 791, t0.Add(120*time.Millisecond))

		intents := rec.all()

		Convey("Every move emits a live scrub intent", func() {
			So(len(intents), ShouldEqual, 3)
			So(intents[0].Kind, ShouldEqual, ProgressScrub)
			So(intents[0].Final, ShouldBeFalse)
			So(intents[0].Progress, ShouldEqual, 0.375)
			So(intents[1].Progress, ShouldEqual, 0.5)
		})

		Convey("The release emits a final scrub intent", func() {
			So(intents[2].Kind, ShouldEqual, ProgressScrub)
			So(intents[2].Final, ShouldBeTrue)
			So(intents[2].Progress, ShouldEqual, 0.5)
		})
	})

	Convey("A drag in the zone that is mostly vertical never latches scrubbing", t, func() {
		tr, rec := newTestTracker(testEnv())
		t0 := time.Now()

		tr.Begin(100, 740, t0)
		tr.Move(105, 800, t0.Add(80*time.Millisecond))
		tr.End(105, 800, t0.Add(100*time.Millisecond))

		So(rec.all(), ShouldHaveLength, 1)
		So(rec.last().Kind, ShouldEqual, VerticalDownExit)
	})
}

func TestTrackerDetailsOpen(t *testing.T) {
	Convey("While the details panel is open", t, func() {
		env := testEnv()
		env.DetailsOpen = true
		tr, rec := newTestTracker(env)
		t0 := time.Now()

		Convey("No hold arms and swipes classify to None", func() {
			tr.Begin(300, 400, t0)
			time.Sleep(60 * time.Millisecond)
			tr.Move(150, 400, t0.Add(100*time.Millisecond))
			tr.End(150, 400, t0.Add(150*time.Millisecond))

			So(rec.all(), ShouldHaveLength, 1)
			So(rec.last().Kind, ShouldEqual, None)
		})
	})
}

func TestTrackerReleaseVelocity(t *testing.T) {
	Convey("The release velocity reflects the recent movement window", t, func() {
		tr, rec := newTestTracker(testEnv())
		t0 := time.Now()

		// Slow start, fast finish. The sample velocity should read the
		// fast tail, not the whole-drag average.
		tr.Begin(100, 200, t0)
		tr.Move(110, 210, t0.Add(300*time.Millisecond))
		tr.Move(120, 250, t0.Add(350*time.Millisecond))
		tr.Move(130, 300, t0.Add(400*time.Millisecond))
		tr.End(130, 300, t0.Add(400*time.Millisecond))

		So(rec.all(), ShouldHaveLength, 1)
		i := rec.last()
		So(i.Kind, ShouldEqual, VerticalDownExit)
		So(i.VelocityY, ShouldBeGreaterThan, 0.3)
	})
}
