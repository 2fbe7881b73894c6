package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "file", "files"), ShouldEqual, "1 file")
		So(Quantify(2, "file", "files"), ShouldEqual, "2 files")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestStack(t *testing.T) {
	Convey("Stack", t, func() {
		var s Stack[int]
		s.Push(1)
		s.Push(2)
		So(s.Len(), ShouldEqual, 2)
		So(s.Peek(), ShouldEqual, 2)
		item := s.Pop()
		So(item, ShouldEqual, 2)
		item = s.Pop()
		So(item, ShouldEqual, 1)
		item = s.Pop()
		So(item, ShouldEqual, 0)
	})
}
