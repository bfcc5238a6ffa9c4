// Package config handles YAML configuration for cdkcheck.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Templates []string     `yaml:"templates"`
	PolicyDir string       `yaml:"policy_dir,omitempty"`
	Output    OutputConfig `yaml:"output"`
	Scan      ScanConfig   `yaml:"scan"`
	OTEL      OTELConfig   `yaml:"otel"`
	Log       LogConfig    `yaml:"log"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Format string `yaml:"format"`
	FailOn string `yaml:"fail_on"`
}

// ScanConfig holds scan settings.
type ScanConfig struct {
	Workers     int    `yaml:"workers"`
	IntervalStr string        `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
}

// OTELConfig holds OpenTelemetry settings.
type OTELConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Insecure    bool          `yaml:"insecure"`
	ServiceName string        `yaml:"service_name"`
	Traces      TracesConfig  `yaml:"traces"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// TracesConfig holds tracing settings.
type TracesConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sample_rate"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := parseInterval(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a config with all defaults applied and no templates.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Scan.Interval = 5 * time.Minute
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Output.Format == "" {
		cfg.Output.Format = "table"
	}
	if cfg.Output.FailOn == "" {
		cfg.Output.FailOn = "failed"
	}
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = 4
	}
	if cfg.Scan.IntervalStr == "" {
		cfg.Scan.IntervalStr = "5m"
	}
	if cfg.OTEL.ServiceName == "" {
		cfg.OTEL.ServiceName = "cdkcheck"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func parseInterval(cfg *Config) error {
	d, err := time.ParseDuration(cfg.Scan.IntervalStr)
	if err != nil {
		return fmt.Errorf("parse interval %q: %w", cfg.Scan.IntervalStr, err)
	}
	cfg.Scan.Interval = d
	return nil
}

// Validate checks the configuration is valid.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("output: format must be table or json (got %q)", c.Output.Format)
	}
	switch c.Output.FailOn {
	case "failed", "unknown", "never":
	default:
		return fmt.Errorf("output: fail_on must be failed, unknown or never (got %q)", c.Output.FailOn)
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan: workers must be positive (got %d)", c.Scan.Workers)
	}
	if c.OTEL.Traces.SampleRate < 0.0 || c.OTEL.Traces.SampleRate > 1.0 {
		return fmt.Errorf("otel: traces.sample_rate must be between 0.0 and 1.0 (got %v)", c.OTEL.Traces.SampleRate)
	}
	return nil
}
