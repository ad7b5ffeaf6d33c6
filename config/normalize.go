package config

import (
	"time"

	"github.com/amartya2002/uptime-notifier/uptime"
)

const (
	DefaultProbeTimeout = time.Second
	DefaultInterval     = time.Second
	DefaultWorkers      = 5
	DefaultServerAddr   = ":8080"
)

// Normalize fills in defaults. It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	p := &cfg.Probe
	if p.Timeout == 0 {
		p.Timeout = DefaultProbeTimeout
	}
	if p.Workers == 0 {
		p.Workers = DefaultWorkers
	}
	if p.TimeoutReportingDelay == nil {
		d := uptime.DefaultTimeoutReportingDelay
		p.TimeoutReportingDelay = &d
	}
	if p.ExpectedContentPattern == "" {
		p.ExpectedContentPattern = uptime.DefaultContentPattern
	}

	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Interval == 0 && t.Schedule == "" {
			t.Interval = DefaultInterval
		}
		if t.Method == "" {
			t.Method = "GET"
		}
		if t.ExpectedStatus == 0 {
			t.ExpectedStatus = 200
		}
		if t.Name == "" {
			t.Name = t.URL
		}
	}

	for i := range cfg.Sinks {
		s := &cfg.Sinks[i]
		if s.Name == "" {
			s.Name = s.Type
		}
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
}
