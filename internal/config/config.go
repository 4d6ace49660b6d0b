// Package config defines dashboard configuration and its loading layers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/perfdash/internal/domain/series"
	"github.com/okian/perfdash/pkg/logger"
	"github.com/okian/perfdash/pkg/metrics"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Dataset file paths. CSV and XLSX are accepted.
	ForcePlatePath string `koanf:"force_plate_path"`
	TrackingPath   string `koanf:"tracking_path"`
	SchedulePath   string `koanf:"schedule_path"`

	// ValuePolicy is "zero" or "skip" for unparseable metric values.
	ValuePolicy string `koanf:"value_policy"`

	// Timezone is the IANA zone dates are bucketed in.
	Timezone string `koanf:"timezone"`

	// CacheSize bounds the chart cache. Zero or less means unbounded.
	CacheSize int `koanf:"cache_size"`

	// ReloadIntervalSec re-reads the dataset files periodically. Zero disables it.
	ReloadIntervalSec int `koanf:"reload_interval_sec"`

	// WarmWorkers precompute charts after each reload. Zero disables warm-up.
	WarmWorkers int `koanf:"warm_workers"`

	// WarmQueueSize bounds the warm-up job queue.
	WarmQueueSize int `koanf:"warm_queue_size"`

	// MetricsLatencyBuckets overrides the millisecond histogram bounds.
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`

	// MetricsConstLabels are attached to every exported metric.
	MetricsConstLabels map[string]string `koanf:"metrics_const_labels"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      logger.FormatText,
		Addr:           ":9080",
		ForcePlatePath: "data/force_plate.csv",
		TrackingPath:   "data/tracking.csv",
		SchedulePath:   "data/schedule.csv",
		ValuePolicy:    "zero",
		Timezone:       "UTC",
		CacheSize:      256,
		WarmWorkers:    2,
		WarmQueueSize:  1024,
	}
}

// Validate reports the first invalid field wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	if c.ReloadIntervalSec < 0 {
		return fmt.Errorf("%w: reload_interval_sec must not be negative", ErrInvalidConfig)
	}
	if c.WarmWorkers < 0 || c.WarmQueueSize < 0 {
		return fmt.Errorf("%w: warm_workers and warm_queue_size must not be negative", ErrInvalidConfig)
	}
	if len(c.MetricsLatencyBuckets) > 0 && !metrics.ValidBuckets(c.MetricsLatencyBuckets) {
		return fmt.Errorf("%w: metrics_latency_buckets must be positive and strictly increasing", ErrInvalidConfig)
	}
	return nil
}

// Policy parses ValuePolicy.
func (c *Config) Policy() (series.ValuePolicy, error) {
	return series.ParseValuePolicy(c.ValuePolicy)
}

// Location loads Timezone. Empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ReloadInterval converts ReloadIntervalSec.
func (c *Config) ReloadInterval() time.Duration {
	return time.Duration(c.ReloadIntervalSec) * time.Second
}

// MetricsOptions maps the metrics settings onto collector options.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithLatencyBuckets(c.MetricsLatencyBuckets),
		metrics.WithConstLabels(c.MetricsConstLabels),
	}
}
