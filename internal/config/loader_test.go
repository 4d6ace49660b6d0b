package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/perfdash/internal/config"
)

var configEnvVars = []string{
	config.FileEnv,
	"PERFDASH_ADDR",
	"PERFDASH_LOG_LEVEL",
	"PERFDASH_FORCE_PLATE_PATH",
	"PERFDASH_VALUE_POLICY",
	"PERFDASH_CACHE_SIZE",
	"PERFDASH_RELOAD_INTERVAL_SEC",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "perfdash.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ForcePlatePath, convey.ShouldEqual, "data/force_plate.csv")
			convey.So(cfg.CacheSize, convey.ShouldEqual, 256)
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PERFDASH_ADDR", ":8080")
			_ = os.Setenv("PERFDASH_FORCE_PLATE_PATH", "/srv/force.xlsx")
			_ = os.Setenv("PERFDASH_VALUE_POLICY", "skip")
			_ = os.Setenv("PERFDASH_CACHE_SIZE", "32")
			_ = os.Setenv("PERFDASH_RELOAD_INTERVAL_SEC", "60")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.ForcePlatePath, convey.ShouldEqual, "/srv/force.xlsx")
			convey.So(cfg.ValuePolicy, convey.ShouldEqual, "skip")
			convey.So(cfg.CacheSize, convey.ShouldEqual, 32)
			convey.So(cfg.ReloadIntervalSec, convey.ShouldEqual, 60)
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
log_format: json
tracking_path: /srv/tracking.csv
timezone: UTC
cache_size: 0
`)
			_ = os.Setenv(config.FileEnv, path)

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			convey.So(cfg.TrackingPath, convey.ShouldEqual, "/srv/tracking.csv")
			convey.So(cfg.CacheSize, convey.ShouldEqual, 0)
			convey.So(cfg.SchedulePath, convey.ShouldEqual, "data/schedule.csv")

			convey.Convey("Then env vars override the file", func() {
				_ = os.Setenv("PERFDASH_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When the YAML file sets metrics options", func() {
			path := writeConfigFile(t, `
metrics_latency_buckets: [1, 10, 100]
metrics_const_labels:
  deployment: staging
`)
			_ = os.Setenv(config.FileEnv, path)

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.MetricsLatencyBuckets, convey.ShouldResemble, []float64{1, 10, 100})
			convey.So(cfg.MetricsConstLabels, convey.ShouldResemble, map[string]string{"deployment": "staging"})
			convey.So(cfg.MetricsOptions(), convey.ShouldHaveLength, 2)
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv(config.FileEnv, filepath.Join(t.TempDir(), "absent.yaml"))

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a loaded value is invalid", func() {
			_ = os.Setenv("PERFDASH_LOG_LEVEL", "chatty")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(cctx)

			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}
