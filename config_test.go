package qlock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := NewConfig()

		So(cfg.Validate(), ShouldBeNil)
		So(cfg.Dimension, ShouldEqual, 64)
		So(cfg.Epsilon, ShouldEqual, DefaultEpsilon)
		So(cfg.Mode, ShouldEqual, ModeAdditive)
		So(cfg.Transform, ShouldEqual, TransformGolden)

		Convey("Every broken field is reported at once", func() {
			cfg.Dimension = -1
			cfg.Epsilon = 0
			cfg.Mode = "sideways"
			cfg.FeatureMix = 2
			cfg.MaxQueue = -1
			cfg.ResultTTL = -time.Second

			err := cfg.Validate()
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "dimension")
			So(err.Error(), ShouldContainSubstring, "epsilon")
			So(err.Error(), ShouldContainSubstring, "sideways")
			So(err.Error(), ShouldContainSubstring, "feature_mix")
			So(err.Error(), ShouldContainSubstring, "max_queue")
			So(err.Error(), ShouldContainSubstring, "result_ttl")
		})
	})

	Convey("Given a YAML file", t, func() {
		path := filepath.Join(t.TempDir(), "qlock.yaml")

		Convey("Its values override the defaults", func() {
			So(os.WriteFile(path, []byte(
				"dimension: 32\nepsilon: 0.02\nmode: multiplicative\nsalt: tenant-a\nscheduling_timeout: 3s\nseed: 7\n",
			), 0600), ShouldBeNil)

			cfg, err := LoadConfig(path)
			So(err, ShouldBeNil)
			So(cfg.Dimension, ShouldEqual, 32)
			So(cfg.Epsilon, ShouldEqual, 0.02)
			So(cfg.Mode, ShouldEqual, ModeMultiplicative)
			So(cfg.Salt, ShouldEqual, "tenant-a")
			So(cfg.SchedulingTimeout, ShouldEqual, 3*time.Second)
			So(cfg.Seed, ShouldEqual, uint64(7))
			So(cfg.Shots, ShouldEqual, 1024)
		})

		Convey("Invalid values are rejected", func() {
			So(os.WriteFile(path, []byte("transform: wavelet\n"), 0600), ShouldBeNil)

			_, err := LoadConfig(path)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("A missing file is an error", func() {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})
}
