package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nanahoshi/pointbot/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	t.Setenv(key, value)
}

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		for _, key := range []string{"POINTBOT_CONFIG", "POINTBOT_DSN", "POINTBOT_DISCORD_TOKEN", "POINTBOT_ADDR", "POINTBOT_QUEUE_SIZE"} {
			setEnv(t, key, "")
			os.Unsetenv(key)
		}

		Convey("When loading without a DSN", func() {
			_, err := config.Load(context.Background())

			Convey("Then it should fail with an invalid config error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When loading with only a DSN", func() {
			setEnv(t, "POINTBOT_DSN", "postgres://localhost/pointbot")
			_, err := config.Load(context.Background())

			Convey("Then the missing token should be rejected", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When loading with required secrets set", func() {
			setEnv(t, "POINTBOT_DSN", "postgres://localhost/pointbot")
			setEnv(t, "POINTBOT_DISCORD_TOKEN", "token")
			cfg, err := config.Load(context.Background())

			Convey("Then defaults should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":10000")
				So(cfg.Timezone, ShouldEqual, "Asia/Tokyo")
				So(cfg.CooldownSeconds, ShouldEqual, 5)
				So(cfg.MultiplierMin, ShouldEqual, 30)
				So(cfg.MultiplierMax, ShouldEqual, 100)
				So(cfg.RankingLimit, ShouldEqual, 10)
			})

			Convey("And env overrides should win", func() {
				setEnv(t, "POINTBOT_ADDR", ":8088")
				setEnv(t, "POINTBOT_QUEUE_SIZE", "64")
				cfg, err := config.Load(context.Background())
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8088")
				So(cfg.QueueSize, ShouldEqual, 64)
			})
		})

		Convey("When loading from a YAML file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "pointbot.yaml")
			So(os.WriteFile(path, []byte("addr: \":7000\"\nworker_count: 2\n"), 0o600), ShouldBeNil)
			setEnv(t, "POINTBOT_CONFIG", path)
			setEnv(t, "POINTBOT_DSN", "postgres://localhost/pointbot")
			setEnv(t, "POINTBOT_DISCORD_TOKEN", "token")

			cfg, err := config.Load(context.Background())

			Convey("Then file values should override defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7000")
				So(cfg.WorkerCount, ShouldEqual, 2)
			})
		})

		Convey("When the multiplier bounds are inverted", func() {
			setEnv(t, "POINTBOT_DSN", "postgres://localhost/pointbot")
			setEnv(t, "POINTBOT_DISCORD_TOKEN", "token")
			setEnv(t, "POINTBOT_MULTIPLIER_MIN", "100")
			setEnv(t, "POINTBOT_MULTIPLIER_MAX", "30")

			_, err := config.Load(context.Background())

			Convey("Then loading should fail", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
