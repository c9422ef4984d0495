package logger_test

import (
	"context"
	"testing"

	"github.com/nanahoshi/pointbot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When fetching the global logger", func() {
			l := logger.Get()

			Convey("Then it should not be nil", func() {
				So(l, ShouldNotBeNil)
			})

			Convey("And logging should not panic", func() {
				ctx := context.Background()
				So(func() {
					l.Info(ctx, "info message", logger.String("k", "v"))
					l.Debug(ctx, "debug message", logger.Int("n", 1))
					l.Warn(ctx, "warn message", logger.Bool("flag", true))
					l.Error(ctx, "error message", logger.Error(nil))
				}, ShouldNotPanic)
			})
		})

		Convey("When creating a named logger", func() {
			l := logger.Named("scheduler")

			Convey("Then it should not be nil", func() {
				So(l, ShouldNotBeNil)
			})
		})

		Convey("When setting levels by string", func() {
			Convey("Then known levels should be accepted", func() {
				So(logger.SetLevelString("debug"), ShouldBeNil)
				So(logger.SetLevelString("info"), ShouldBeNil)
				So(logger.SetLevelString("warning"), ShouldBeNil)
				So(logger.SetLevelString("error"), ShouldBeNil)
				So(logger.SetLevelString(""), ShouldBeNil)
			})

			Convey("And unknown levels should be rejected", func() {
				So(logger.SetLevelString("verbose"), ShouldNotBeNil)
			})
		})

		Convey("When syncing", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}
