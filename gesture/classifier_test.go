package gesture

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func testConfig() Config {
	return Config{
		HorizontalThreshold:   60,
		VerticalUpThreshold:   40,
		VerticalDownThreshold: 50,
		DiagonalThreshold:     45,
		MinExitVelocity:       0.3,
		TapMaxDuration:        250 * time.Millisecond,
		TapMaxDisplacement:    10,
		LongPressDelay:        400 * time.Millisecond,
		JitterThreshold:       8,
		ProgressZoneFraction:  0.08,
	}
}

func testEnv() Environment {
	return Environment{
		ViewportWidth:   400,
		ViewportHeight:  800,
		CanNavigateNext: true,
		CanNavigatePrev: true,
	}
}

func TestClassify(t *testing.T) {
	cfg := testConfig()

	Convey("A short near-stationary press classifies as tap", t, func() {
		s := Sample{OriginX: 300, OriginY: 400, DX: 3, DY: -2, Duration: 120 * time.Millisecond}
		i := Classify(cfg, testEnv(), s)
		So(i.Kind, ShouldEqual, Tap)
		So(i.OriginHalf, ShouldEqual, RightHalf)
	})

	Convey("A press on the left half reports the left half", t, func() {
		s := Sample{OriginX: 50, OriginY: 400, DX: 1, DY: 1, Duration: 80 * time.Millisecond}
		i := Classify(cfg, testEnv(), s)
		So(i.Kind, ShouldEqual, Tap)
		So(i.OriginHalf, ShouldEqual, LeftHalf)
	})

	Convey("A slow tap-sized press past the duration bound is inconclusive", t, func() {
		s := Sample{OriginX: 200, OriginY: 400, DX: 2, DY: 2, Duration: 400 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, None)
	})

	Convey("No sample classifies while the details panel is open", t, func() {
		env := testEnv()
		env.DetailsOpen = true
		samples := []Sample{
			{DX: 3, DY: 1, Duration: 100 * time.Millisecond},
			{DX: 120, VelocityX: 0.6, Duration: 200 * time.Millisecond},
			{DY: -80, Duration: 180 * time.Millisecond},
			{OriginY: 780, DX: 90, Duration: 300 * time.Millisecond},
		}
		for _, s := range samples {
			So(Classify(cfg, env, s).Kind, ShouldEqual, None)
		}
	})

	Convey("A horizontal drag starting in the bottom zone is a scrub", t, func() {
		s := Sample{OriginX: 100, OriginY: 780, DX: 100, DY: 4, Duration: 300 * time.Millisecond}
		i := Classify(cfg, testEnv(), s)
		So(i.Kind, ShouldEqual, ProgressScrub)
		So(i.Final, ShouldBeTrue)
		So(i.Progress, ShouldEqual, 0.5)
	})

	Convey("Scrub progress clamps to the track", t, func() {
		s := Sample{OriginX: 380, OriginY: 790, DX: 200, DY: 2, Duration: 200 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Progress, ShouldEqual, 1)

		s = Sample{OriginX: 20, OriginY: 790, DX: -80, DY: 2, Duration: 200 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Progress, ShouldEqual, 0)
	})

	Convey("A mostly vertical drag in the bottom zone is not a scrub", t, func() {
		s := Sample{OriginX: 200, OriginY: 780, DX: 10, DY: 60, VelocityY: 0.5,
			Duration: 200 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, VerticalDownExit)
	})

	Convey("An upward swipe reveals the details panel", t, func() {
		s := Sample{OriginX: 200, OriginY: 400, DX: -5, DY: -40.5, Duration: 180 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, VerticalUpReveal)
	})

	Convey("An upward swipe landing exactly on the threshold still reveals", t, func() {
		s := Sample{OriginX: 200, OriginY: 400, DX: -5, DY: -cfg.VerticalUpThreshold,
			Duration: 180 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, VerticalUpReveal)
	})

	Convey("An upward swipe dominated by horizontal movement is not a reveal", t, func() {
		s := Sample{OriginX: 200, OriginY: 400, DX: -90, DY: -45, Duration: 180 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, NavigateNext)
	})

	Convey("A leftward swipe advances when a next item exists", t, func() {
		s := Sample{OriginX: 300, OriginY: 400, DX: -120, DY: 10, VelocityX: -0.6,
			Duration: 200 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, NavigateNext)
	})

	Convey("A leftward swipe with nothing to advance to is inconclusive", t, func() {
		env := testEnv()
		env.CanNavigateNext = false
		s := Sample{OriginX: 300, OriginY: 400, DX: -120, DY: 10, VelocityX: -0.6,
			Duration: 200 * time.Millisecond}
		So(Classify(cfg, env, s).Kind, ShouldEqual, None)
	})

	Convey("A rightward swipe goes back when a previous item exists", t, func() {
		s := Sample{OriginX: 100, OriginY: 400, DX: 120, DY: -8, VelocityX: 0.6,
			Duration: 200 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, NavigatePrev)
	})

	Convey("A rightward swipe with no previous item exits", t, func() {
		env := testEnv()
		env.CanNavigatePrev = false
		s := Sample{OriginX: 100, OriginY: 400, DX: 120, DY: -8, VelocityX: 0.6,
			Duration: 200 * time.Millisecond}
		i := Classify(cfg, env, s)
		So(i.Kind, ShouldEqual, HorizontalExit)
		So(i.Kind.IsExit(), ShouldBeTrue)
	})

	Convey("A fast downward swipe exits", t, func() {
		s := Sample{OriginX: 200, OriginY: 200, DX: 10, DY: 80, VelocityY: 0.5,
			Duration: 180 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, VerticalDownExit)
	})

	Convey("A slow downward swipe is inconclusive", t, func() {
		s := Sample{OriginX: 200, OriginY: 200, DX: 10, DY: 80, VelocityY: 0.1,
			Duration: 800 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, None)
	})

	Convey("A fast down-right swipe exits diagonally", t, func() {
		s := Sample{OriginX: 100, OriginY: 200, DX: 50, DY: 55, VelocityX: 0.3, VelocityY: 0.3,
			Duration: 180 * time.Millisecond}
		i := Classify(cfg, testEnv(), s)
		So(i.Kind, ShouldEqual, DiagonalExit)
		So(i.Kind.IsExit(), ShouldBeTrue)
	})

	Convey("Displacement below every threshold snaps back", t, func() {
		s := Sample{OriginX: 200, OriginY: 400, DX: 30, DY: 20, VelocityX: 0.2,
			Duration: 500 * time.Millisecond}
		So(Classify(cfg, testEnv(), s).Kind, ShouldEqual, None)
	})
}

func TestInProgressZone(t *testing.T) {
	cfg := testConfig()

	Convey("Only the bottom share of the viewport is the scrub zone", t, func() {
		So(cfg.InProgressZone(790, 800), ShouldBeTrue)
		So(cfg.InProgressZone(736, 800), ShouldBeTrue)
		So(cfg.InProgressZone(700, 800), ShouldBeFalse)
		So(cfg.InProgressZone(0, 800), ShouldBeFalse)
	})

	Convey("A zero-height viewport has no scrub zone", t, func() {
		So(cfg.InProgressZone(10, 0), ShouldBeFalse)
	})
}
