package config

import (
	"testing"

	"github.com/reelnotes/reelnotes/filesystem"
	"github.com/reelnotes/reelnotes/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		filesystem.SetMemMapFs()

		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			So(Setup(), ShouldBeNil)
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Gesture thresholds should be registered as named fields", func() {
			So(Setup(), ShouldBeNil)
			So(viper.GetFloat64(key.GestureHorizontalThreshold), ShouldBeGreaterThan, 0)
			So(viper.GetFloat64(key.GestureTapMaxDisplacement), ShouldBeLessThan, viper.GetFloat64(key.GestureHorizontalThreshold))
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("gesture.long_press_delay_ms")
			So(result, ShouldEqual, "gesture_long_press_delay_ms")
		})
	})
}
