// Package config defines service configuration and how it is loaded.
//
// Defaults come from New. Load layers an optional YAML file and MERGINGTON_
// environment variables on top of them.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// EnforceCapacity rejects sign-ups once an activity reaches MaxParticipants.
	EnforceCapacity bool `koanf:"enforce_capacity"`

	// SeedFile points at a YAML activity catalogue. Empty uses the built-in one.
	SeedFile string `koanf:"seed_file"`

	// EventQueueSize bounds the registration event queue.
	EventQueueSize int `koanf:"event_queue_size"`

	// WorkerCount sets the number of journal workers.
	WorkerCount int `koanf:"worker_count"`

	// HistorySize is how many events the journal keeps per activity.
	HistorySize int `koanf:"history_size"`

	// MaxHistoryLimit caps GET /activities/{activity_name}/history?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	// Empty keeps mergington_activities.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLatencyBuckets overrides the HTTP latency histogram buckets (ms).
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`

	// MetricsLabels are constant labels attached to every metric, e.g. env.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	workers := runtime.NumCPU()
	if workers > 4 {
		workers = 4
	}
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":8000",
		EnforceCapacity: true,
		EventQueueSize:  1024,
		WorkerCount:     workers,
		HistorySize:     100,
		MaxHistoryLimit: 100,
	}
}
