// Package config loads the YAML configuration of the uptime notifier.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     LogConfig      `yaml:"log"`
	Probe   ProbeConfig    `yaml:"probe"`
	Targets []TargetConfig `yaml:"targets"`
	Sinks   []SinkConfig   `yaml:"sinks"`
	Server  ServerConfig   `yaml:"server"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level    string   `yaml:"level"` // none | error | info | debug
	Console  *bool    `yaml:"console"`
	Files    []string `yaml:"files"`
	Internal bool     `yaml:"internal"`
	Disable  bool     `yaml:"disable"`
}

// ---- PROBING ----

type ProbeConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	Workers      int           `yaml:"workers"`
	ResultBuffer int           `yaml:"result_buffer"`
	LogRetention int           `yaml:"log_retention"`

	// TimeoutReportingDelay is the grace window for the timeout kind.
	TimeoutReportingDelay  *time.Duration `yaml:"timeout_reporting_delay"`
	ExpectedContentPattern string         `yaml:"expected_content_pattern"`

	// GraceDelays extends the per-kind grace table, keyed by kind code.
	GraceDelays map[string]time.Duration `yaml:"grace_delays"`
}

// ---- TARGETS ----

type TargetConfig struct {
	ID             string        `yaml:"id"`
	Name           string        `yaml:"name"`
	URL            string        `yaml:"url"`
	Method         string        `yaml:"method"`
	Interval       time.Duration `yaml:"interval"`
	Schedule       string        `yaml:"schedule"` // cron expression, overrides interval
	ExpectedStatus int           `yaml:"expected_status"`
}

// ---- SINKS ----

const (
	SinkLog     = "log"
	SinkConsole = "console"
	SinkFile    = "file"
	SinkWebhook = "webhook"
)

type SinkConfig struct {
	Type    string        `yaml:"type"`
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`     // webhook
	Path    string        `yaml:"path"`    // file
	Timeout time.Duration `yaml:"timeout"` // webhook
}

// ---- API ----

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Parse decodes YAML, rejecting unknown fields.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads, validates and normalizes the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	Normalize(cfg)
	return cfg, nil
}
