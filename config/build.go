package config

import (
	"fmt"
	"os"
	"regexp"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amartya2002/uptime-notifier/uptime"
)

// ParseLogLevel maps a config level name to the checker's result log level.
func ParseLogLevel(s string) (uptime.LogLevel, error) {
	switch s {
	case "", "info":
		return uptime.LogInfo, nil
	case "none":
		return uptime.LogNone, nil
	case "error":
		return uptime.LogError, nil
	case "debug":
		return uptime.LogDebug, nil
	}
	return uptime.LogNone, fmt.Errorf("log.level: unknown level %q", s)
}

// BuildLogger builds the zap logger described by the log section.
func (c *Config) BuildLogger() (*zap.Logger, error) {
	if c.Log.Disable {
		return zap.NewNop(), nil
	}

	console := true
	if c.Log.Console != nil {
		console = *c.Log.Console
	}
	var paths []string
	if console {
		paths = append(paths, "stdout")
	}
	paths = append(paths, c.Log.Files...)
	if len(paths) == 0 {
		paths = []string{"stdout"}
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = paths
	if c.Log.Level == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// Endpoints converts the configured targets.
func (c *Config) Endpoints() []uptime.Endpoint {
	eps := make([]uptime.Endpoint, 0, len(c.Targets))
	for _, t := range c.Targets {
		eps = append(eps, uptime.Endpoint{
			ID:             t.ID,
			Name:           t.Name,
			URL:            t.URL,
			Method:         t.Method,
			Frequency:      t.Interval,
			Schedule:       t.Schedule,
			ExpectedStatus: t.ExpectedStatus,
		})
	}
	return eps
}

// GraceDelays returns the per-kind grace table: the timeout delay plus any overrides.
func (c *Config) GraceDelays() uptime.GraceDelays {
	g := uptime.DefaultGraceDelays()
	if d := c.Probe.TimeoutReportingDelay; d != nil {
		g[uptime.KindTimeout] = *d
	}
	for k, d := range c.Probe.GraceDelays {
		g[uptime.KindCode(k)] = d
	}
	return g
}

// BuildSinks creates the configured sinks. The returned close function
// releases any files opened for file sinks.
func (c *Config) BuildSinks(logger *zap.Logger) ([]uptime.Sink, func() error, error) {
	var (
		sinks []uptime.Sink
		files []*os.File
	)
	closeAll := func() error {
		var errs error
		for _, f := range files {
			errs = multierr.Append(errs, f.Close())
		}
		return errs
	}

	for _, s := range c.Sinks {
		switch s.Type {
		case SinkLog:
			sinks = append(sinks, uptime.NewLogSink(logger.Named(s.Name)))
		case SinkConsole:
			sinks = append(sinks, uptime.NewWriterSink(s.Name, os.Stdout))
		case SinkFile:
			f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				_ = closeAll()
				return nil, nil, fmt.Errorf("sink %s: %w", s.Name, err)
			}
			files = append(files, f)
			sinks = append(sinks, uptime.NewWriterSink(s.Name, f))
		case SinkWebhook:
			sinks = append(sinks, uptime.NewWebhookSink(s.Name, s.URL, s.Timeout))
		default:
			_ = closeAll()
			return nil, nil, fmt.Errorf("sink %s: unknown type %q", s.Name, s.Type)
		}
	}
	return sinks, closeAll, nil
}

// Options translates the configuration into checker options.
func (c *Config) Options(logger *zap.Logger, sinks []uptime.Sink) ([]uptime.Option, error) {
	level, err := ParseLogLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := []uptime.Option{
		uptime.WithLogger(logger),
		uptime.WithLogLevel(level),
		uptime.WithInternalLogs(c.Log.Internal),
		uptime.WithTimeout(c.Probe.Timeout),
		uptime.WithWorkers(c.Probe.Workers),
		uptime.WithGraceDelays(c.GraceDelays()),
		uptime.WithSinks(sinks...),
	}
	if c.Probe.ExpectedContentPattern != "" {
		re, err := regexp.Compile(c.Probe.ExpectedContentPattern)
		if err != nil {
			return nil, fmt.Errorf("probe.expected_content_pattern: %w", err)
		}
		opts = append(opts, uptime.WithContentPattern(re))
	}
	if c.Probe.ResultBuffer > 0 {
		opts = append(opts, uptime.WithResultBuffer(c.Probe.ResultBuffer))
	}
	if c.Probe.LogRetention > 0 {
		opts = append(opts, uptime.WithLogRetention(c.Probe.LogRetention))
	}
	return opts, nil
}
