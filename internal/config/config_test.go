package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/wangcai/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1_024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.MaxSessions, convey.ShouldEqual, 10_000)
			convey.So(cfg.SessionTTL, convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.Gemini.TextModel, convey.ShouldEqual, "gemini-3-pro-preview")
			convey.So(cfg.Gemini.ImageModel, convey.ShouldEqual, "gemini-2.5-flash-image")
			convey.So(cfg.Gemini.TextTimeout, convey.ShouldEqual, 60*time.Second)
			convey.So(cfg.Gemini.ImageTimeout, convey.ShouldEqual, 90*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a bound is broken", func() {
			cfg.WorkerCount = 0

			convey.Convey("Then Validate reports ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "worker_count")
			})
		})
	})
}
