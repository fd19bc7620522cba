package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/mergington/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("MERGINGTON_ADDR", ":8080")
			t.Setenv("MERGINGTON_EVENT_QUEUE_SIZE", "64")
			t.Setenv("MERGINGTON_WORKER_COUNT", "3")
			t.Setenv("MERGINGTON_ENFORCE_CAPACITY", "false")
			t.Setenv("MERGINGTON_LOG_FORMAT", "json")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.EnforceCapacity, convey.ShouldBeFalse)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
seed_file: "/etc/mergington/activities.yaml"
history_size: 10
max_history_limit: 5
enforce_capacity: false
`)
			t.Setenv("MERGINGTON_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SeedFile, convey.ShouldEqual, "/etc/mergington/activities.yaml")
				convey.So(cfg.HistorySize, convey.ShouldEqual, 10)
				convey.So(cfg.MaxHistoryLimit, convey.ShouldEqual, 5)
				convey.So(cfg.EnforceCapacity, convey.ShouldBeFalse)
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeConfigFile(t, `
addr: ":9090"
worker_count: 2
history_size: 10
`)
			t.Setenv("MERGINGTON_CONFIG", path)
			t.Setenv("MERGINGTON_ADDR", ":8080")
			t.Setenv("MERGINGTON_WORKER_COUNT", "1")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 1)
				convey.So(cfg.HistorySize, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			path := writeConfigFile(t, `invalid: yaml: content: [`)
			t.Setenv("MERGINGTON_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("MERGINGTON_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file empties addr", func() {
			path := writeConfigFile(t, `addr: ""`)
			t.Setenv("MERGINGTON_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("MERGINGTON_EVENT_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading metrics settings from file and env", func() {
			path := writeConfigFile(t, `
metrics_latency_buckets: [1, 10, 100]
metrics_labels:
  env: staging
  version: "1.4.0"
`)
			t.Setenv("MERGINGTON_CONFIG", path)
			t.Setenv("MERGINGTON_METRICS_NAMESPACE", "school")

			cfg, err := config.Load(ctx)

			convey.Convey("Then every metrics setting should be populated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "school")
				convey.So(cfg.MetricsSubsystem, convey.ShouldBeEmpty)
				convey.So(cfg.MetricsLatencyBuckets, convey.ShouldResemble, []float64{1, 10, 100})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "staging", "version": "1.4.0"})
			})
		})

		convey.Convey("When loading config with a non-positive history limit", func() {
			t.Setenv("MERGINGTON_MAX_HISTORY_LIMIT", "0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MERGINGTON_CONFIG",
		"MERGINGTON_LOG_LEVEL",
		"MERGINGTON_LOG_FORMAT",
		"MERGINGTON_ADDR",
		"MERGINGTON_ENFORCE_CAPACITY",
		"MERGINGTON_SEED_FILE",
		"MERGINGTON_EVENT_QUEUE_SIZE",
		"MERGINGTON_WORKER_COUNT",
		"MERGINGTON_HISTORY_SIZE",
		"MERGINGTON_MAX_HISTORY_LIMIT",
		"MERGINGTON_METRICS_NAMESPACE",
		"MERGINGTON_METRICS_SUBSYSTEM",
	} {
		if _, ok := os.LookupEnv(key); ok {
			t.Setenv(key, "")
			_ = os.Unsetenv(key)
		}
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
