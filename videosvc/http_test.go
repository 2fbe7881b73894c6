package videosvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestService(handler http.Handler) (*HTTP, *httptest.Server) {
	srv := httptest.NewServer(handler)
	svc := &HTTP{
		baseURL: srv.URL,
		client:  srv.Client(),
		token:   func() (string, error) { return "test-token", nil },
	}
	return svc, srv
}

func TestFeed(t *testing.T) {
	Convey("Feed", t, func() {
		Convey("Should decode notes and convert durations", func(c C) {
			svc, srv := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.So(r.URL.Path, ShouldEqual, "/v1/feed")
				c.So(r.Header.Get("Authorization"), ShouldEqual, "Bearer test-token")
				w.Write([]byte(`{"notes":[
					{"id":"n1","title":"First","summary":"s","tags":["go"],"duration_sec":12.5},
					{"id":"n2","title":"Second","duration_sec":0}
				]}`))
			}))
			defer srv.Close()

			notes, err := svc.Feed(context.Background())
			So(err, ShouldBeNil)
			So(notes, ShouldHaveLength, 2)
			So(notes[0].Duration, ShouldEqual, 12500*time.Millisecond)
			So(notes[0].Ref(), ShouldResemble, VideoRef{ID: "n1"})
		})

		Convey("Should surface an auth hint on 401", func() {
			svc, srv := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer srv.Close()

			_, err := svc.Feed(context.Background())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "auth")
		})
	})
}

func TestPlaybackURL(t *testing.T) {
	Convey("GetPlaybackURL", t, func() {
		Convey("Should resolve a signed URL", func(c C) {
			svc, srv := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.So(r.URL.Path, ShouldEqual, "/v1/videos/n1/playback")
				c.So(r.URL.RawQuery, ShouldBeEmpty)
				w.Write([]byte(`{"url":"https://cdn.example.com/n1.mp4","expires_at":"2030-01-01T00:00:00Z"}`))
			}))
			defer srv.Close()

			p, err := svc.GetPlaybackURL(context.Background(), VideoRef{ID: "n1"})
			So(err, ShouldBeNil)
			So(p.URL, ShouldEqual, "https://cdn.example.com/n1.mp4")
			So(p.Expired(time.Now()), ShouldBeFalse)
			So(p.Expired(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("Should reject an empty video id without a request", func() {
			svc, srv := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("no request expected")
			}))
			defer srv.Close()

			_, err := svc.GetPlaybackURL(context.Background(), VideoRef{})
			So(err, ShouldNotBeNil)
		})

		Convey("Should fail when the service returns no url", func() {
			svc, srv := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			_, err := svc.GetPlaybackURL(context.Background(), VideoRef{ID: "n1"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("RefreshPlaybackURL marks the request as a forced refresh", t, func(c C) {
		svc, srv := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.So(r.URL.Query().Get("refresh"), ShouldEqual, "1")
			w.Write([]byte(`{"url":"https://cdn.example.com/n1.mp4?sig=new"}`))
		}))
		defer srv.Close()

		p, err := svc.RefreshPlaybackURL(context.Background(), VideoRef{ID: "n1"})
		So(err, ShouldBeNil)
		So(p.URL, ShouldContainSubstring, "sig=new")
	})
}
