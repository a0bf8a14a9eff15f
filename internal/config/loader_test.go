package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pable/uniqorn/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var envKeys = []string{
	"UNIQORN_CONFIG", "UNIQORN_BACKEND", "UNIQORN_INDEX_PATH", "UNIQORN_ALPHA",
	"UNIQORN_MIN_GAMES", "UNIQORN_REDIS_ADDR", "UNIQORN_LOG_LEVEL",
}

func clearConfigEnvVars() {
	for _, k := range envKeys {
		_ = os.Unsetenv(k)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		t.Chdir(t.TempDir())
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Backend, convey.ShouldEqual, "json")
				convey.So(cfg.IndexPath, convey.ShouldEqual, "data/bucket_index.json")
				convey.So(cfg.Alpha, convey.ShouldEqual, 0.10)
				convey.So(cfg.MinGames, convey.ShouldEqual, 15)
				convey.So(cfg.FrontendMaxGames, convey.ShouldEqual, 10)
				convey.So(cfg.CurrentSeason, convey.ShouldEqual, "2025-26")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("UNIQORN_BACKEND", "sqlite")
			_ = os.Setenv("UNIQORN_INDEX_PATH", "idx.db")
			_ = os.Setenv("UNIQORN_ALPHA", "0.25")
			_ = os.Setenv("UNIQORN_MIN_GAMES", "20")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Backend, convey.ShouldEqual, "sqlite")
				convey.So(cfg.IndexPath, convey.ShouldEqual, "idx.db")
				convey.So(cfg.Alpha, convey.ShouldEqual, 0.25)
				convey.So(cfg.MinGames, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := filepath.Join(t.TempDir(), "uniqorn.yaml")
			body := "index_path: custom.json.zst\nredis_addr: localhost:6379\nmin_games: 5\n"
			convey.So(os.WriteFile(path, []byte(body), 0o644), convey.ShouldBeNil)

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then file values should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.IndexPath, convey.ShouldEqual, "custom.json.zst")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.MinGames, convey.ShouldEqual, 5)
			})

			convey.Convey("And env vars should take precedence over the file", func() {
				_ = os.Setenv("UNIQORN_MIN_GAMES", "9")
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx, path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MinGames, convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When a .env file is present", func() {
			convey.So(os.WriteFile(".env", []byte("UNIQORN_REDIS_ADDR=cache:6379\n"), 0o644), convey.ShouldBeNil)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then its variables should be picked up", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "cache:6379")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the backend is unknown", func() {
			_ = os.Setenv("UNIQORN_BACKEND", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx, "")

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
