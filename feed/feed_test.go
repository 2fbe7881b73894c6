package feed

import (
	"testing"

	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/videosvc"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func sampleNotes() []videosvc.Note {
	return []videosvc.Note{
		{ID: "n1", Title: "Knife skills for beginners", Tags: []string{"cooking"}},
		{ID: "n2", Title: "Sourdough starter day one", Tags: []string{"baking", "bread"}},
		{ID: "n3", Title: "Sharpening a chef knife", Summary: "whetstone angles and strokes"},
	}
}

func TestContext(t *testing.T) {
	Convey("Given a three-item feed context", t, func() {
		c := Context{Items: sampleNotes()}

		Convey("The zero index can advance but not go back", func() {
			So(c.CanPrev(), ShouldBeFalse)
			So(c.CanNext(), ShouldBeTrue)
			So(c.Current().MustGet().ID, ShouldEqual, "n1")
		})

		Convey("Next and Prev move within bounds only", func() {
			So(c.Next(), ShouldBeTrue)
			So(c.Next(), ShouldBeTrue)
			So(c.Next(), ShouldBeFalse)
			So(c.Index, ShouldEqual, 2)

			So(c.Prev(), ShouldBeTrue)
			So(c.Prev(), ShouldBeTrue)
			So(c.Prev(), ShouldBeFalse)
			So(c.Index, ShouldEqual, 0)
		})

		Convey("Jump validates the index", func() {
			So(c.Jump(2), ShouldBeTrue)
			So(c.Jump(3), ShouldBeFalse)
			So(c.Jump(-1), ShouldBeFalse)
			So(c.Index, ShouldEqual, 2)
		})
	})

	Convey("An empty context has no current note", t, func() {
		c := Context{}
		So(c.Current().IsAbsent(), ShouldBeTrue)
		So(c.CanNext(), ShouldBeFalse)
		So(c.CanPrev(), ShouldBeFalse)
	})
}

func TestSearch(t *testing.T) {
	viper.Set(key.FeedSearchLimit, 10)

	Convey("Search", t, func() {
		notes := sampleNotes()

		Convey("An empty query returns the feed unchanged", func() {
			So(Search(notes, "  "), ShouldResemble, notes)
		})

		Convey("Matches rank by edit distance to the title", func() {
			results := Search(notes, "knife")
			So(len(results), ShouldBeGreaterThanOrEqualTo, 2)
			// "Sharpening a chef knife" is the shorter edit from "knife"
			So(results[0].ID, ShouldEqual, "n3")
		})

		Convey("Tags and summary are searchable", func() {
			So(Search(notes, "bread"), ShouldHaveLength, 1)
			So(Search(notes, "bread")[0].ID, ShouldEqual, "n2")

			So(Search(notes, "whetstone"), ShouldHaveLength, 1)
			So(Search(notes, "whetstone")[0].ID, ShouldEqual, "n3")
		})

		Convey("The configured limit caps the result set", func() {
			viper.Set(key.FeedSearchLimit, 1)
			defer viper.Set(key.FeedSearchLimit, 10)

			So(Search(notes, "knife"), ShouldHaveLength, 1)
		})

		Convey("A query with no matches returns nothing", func() {
			So(Search(notes, "zzzzzz"), ShouldBeEmpty)
		})
	})
}
