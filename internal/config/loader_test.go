package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/diamond/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"DIAMOND_CONFIG", "DIAMOND_ADDR", "DIAMOND_LOG_LEVEL", "DIAMOND_LOG_FORMAT",
	"DIAMOND_STORE_DRIVER", "DIAMOND_DB_PATH", "DIAMOND_BUSY_TIMEOUT", "DIAMOND_QUEUE_SIZE", "DIAMOND_DEDUPE_SIZE",
	"DIAMOND_RECENT_LIMIT", "DIAMOND_MAX_RECENT_LIMIT", "DIAMOND_TEAM_NAME", "DIAMOND_SHUTDOWN_TIMEOUT",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "diamond.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.TeamName, convey.ShouldEqual, "Diamond")
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("DIAMOND_ADDR", ":8081")
			_ = os.Setenv("DIAMOND_STORE_DRIVER", "memory")
			_ = os.Setenv("DIAMOND_QUEUE_SIZE", "32")
			_ = os.Setenv("DIAMOND_RECENT_LIMIT", "5")
			_ = os.Setenv("DIAMOND_TEAM_NAME", "Mudcats")
			_ = os.Setenv("DIAMOND_SHUTDOWN_TIMEOUT", "3s")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)
				convey.So(cfg.RecentLimit, convey.ShouldEqual, 5)
				convey.So(cfg.TeamName, convey.ShouldEqual, "Mudcats")
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 3*time.Second)
			})
		})

		convey.Convey("When a YAML file is provided", func() {
			path := writeConfigFile(t, `
addr: ":9090"
log_format: json
db_path: /tmp/evals.db
busy_timeout: 250ms
max_recent_limit: 50
`)
			_ = os.Setenv("DIAMOND_CONFIG", path)

			convey.Convey("Then the file is layered over defaults", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/evals.db")
				convey.So(cfg.BusyTimeout, convey.ShouldEqual, 250*time.Millisecond)
				convey.So(cfg.MaxRecentLimit, convey.ShouldEqual, 50)
			})

			convey.Convey("And env vars win over the file", func() {
				_ = os.Setenv("DIAMOND_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("DIAMOND_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the merged config is invalid", func() {
			_ = os.Setenv("DIAMOND_STORE_DRIVER", "mongo")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
