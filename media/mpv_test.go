package media

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Should accept http and https URLs", func() {
			for _, u := range []string{
				"http://cdn.example.com/clip.mp4",
				"https://cdn.example.com/clip.mp4?token=abc",
			} {
				out, err := sanitizeMediaTarget(u)
				So(err, ShouldBeNil)
				So(out, ShouldEqual, u)
			}
		})

		Convey("Should reject empty and control-character URLs", func() {
			for _, u := range []string{"", "   ", "http://a\nb"} {
				_, err := sanitizeMediaTarget(u)
				So(err, ShouldNotBeNil)
			}
		})

		Convey("Should reject flag-shaped input", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject unsupported schemes", func() {
			_, err := sanitizeMediaTarget("ftp://host/file.mp4")
			So(err, ShouldNotBeNil)
		})

		Convey("Should clean local paths", func() {
			out, err := sanitizeMediaTarget("./clips/../clips/a.mp4")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "clips/a.mp4")
		})
	})
}

func TestSanitizeTitle(t *testing.T) {
	Convey("sanitizeTitle strips control characters", t, func() {
		So(sanitizeTitle("a\nb\tc\x00d  "), ShouldEqual, "a b c d")
	})
}

func TestTimeThrottle(t *testing.T) {
	Convey("Given a 4Hz time throttle", t, func() {
		th := newTimeThrottle(4)
		t0 := time.Now()

		Convey("Position updates inside the interval are dropped", func() {
			_, emit := th.onPosition(1.0, t0)
			So(emit, ShouldBeTrue)

			_, emit = th.onPosition(1.1, t0.Add(100*time.Millisecond))
			So(emit, ShouldBeFalse)

			e, emit := th.onPosition(1.3, t0.Add(300*time.Millisecond))
			So(emit, ShouldBeTrue)
			So(e.Position, ShouldEqual, 1.3)
		})

		Convey("Duration changes always pass through", func() {
			_, emit := th.onPosition(1.0, t0)
			So(emit, ShouldBeTrue)

			e, emit := th.onDuration(120, t0.Add(10*time.Millisecond))
			So(emit, ShouldBeTrue)
			So(e.Duration, ShouldEqual, 120)
			So(e.Position, ShouldEqual, 1.0)
		})

		Convey("Later emits carry the last known duration", func() {
			_, _ = th.onDuration(120, t0)
			e, emit := th.onPosition(5, t0.Add(time.Second))
			So(emit, ShouldBeTrue)
			So(e.Duration, ShouldEqual, 120)
		})

		Convey("A non-positive rate falls back to a sane default", func() {
			So(newTimeThrottle(0).interval, ShouldEqual, 250*time.Millisecond)
		})
	})
}
