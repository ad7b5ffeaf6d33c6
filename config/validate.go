package config

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"

	"github.com/amartya2002/uptime-notifier/uptime"
)

// Validate checks configuration correctness and reports every problem found.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	var errs error

	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		errs = multierr.Append(errs, err)
	}

	p := cfg.Probe
	if p.Timeout < 0 {
		errs = multierr.Append(errs, fmt.Errorf("probe.timeout must not be negative"))
	}
	if p.Workers < 0 {
		errs = multierr.Append(errs, fmt.Errorf("probe.workers must not be negative"))
	}
	if p.TimeoutReportingDelay != nil && *p.TimeoutReportingDelay < 0 {
		errs = multierr.Append(errs, fmt.Errorf("probe.timeout_reporting_delay must not be negative"))
	}
	if p.ExpectedContentPattern != "" {
		if _, err := regexp.Compile(p.ExpectedContentPattern); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("probe.expected_content_pattern: %w", err))
		}
	}
	for k, d := range p.GraceDelays {
		if !uptime.KindCode(k).Valid() {
			errs = multierr.Append(errs, fmt.Errorf("probe.grace_delays: unknown kind %q", k))
		}
		if d < 0 {
			errs = multierr.Append(errs, fmt.Errorf("probe.grace_delays.%s must not be negative", k))
		}
	}

	if len(cfg.Targets) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("at least one target is required"))
	}
	ids := make(map[string]struct{})
	for i, t := range cfg.Targets {
		label := fmt.Sprintf("targets[%d]", i)
		if t.ID != "" {
			label = fmt.Sprintf("target %q", t.ID)
			if _, dup := ids[t.ID]; dup {
				errs = multierr.Append(errs, fmt.Errorf("%s: duplicate id", label))
			}
			ids[t.ID] = struct{}{}
		}
		u, err := url.Parse(t.URL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errs = multierr.Append(errs, fmt.Errorf("%s: url must be an absolute http(s) URL", label))
		}
		if t.Interval < 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: interval must not be negative", label))
		}
		if t.Schedule != "" {
			if _, err := cron.ParseStandard(t.Schedule); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: schedule: %w", label, err))
			}
		}
	}

	for i, s := range cfg.Sinks {
		label := fmt.Sprintf("sinks[%d]", i)
		switch s.Type {
		case SinkLog, SinkConsole:
		case SinkFile:
			if s.Path == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: file sink requires path", label))
			}
		case SinkWebhook:
			if u, err := url.Parse(s.URL); err != nil || u.Host == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: webhook sink requires an absolute url", label))
			}
		default:
			errs = multierr.Append(errs, fmt.Errorf("%s: unknown sink type %q", label, s.Type))
		}
	}

	return errs
}
