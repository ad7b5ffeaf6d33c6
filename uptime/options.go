// Package uptime exposes configuration options for the Checker via a
// functional options API.
package uptime

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// ===== Options Pattern =====
type Option func(*Checker)

// WithWorkers bounds how many probes may run at once across all sites.
func WithWorkers(n int) Option {
	return func(c *Checker) { c.numWorkers = n }
}

// WithTimeout sets the probe timeout on a copy of the current client, so a
// client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithHTTPClient replaces the client used for probes.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Checker) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogLevel(level LogLevel) Option {
	return func(c *Checker) { c.logLevel = level }
}

func WithResultBuffer(size int) Option {
	return func(c *Checker) { c.results = make(chan Result, size) }
}

// enable/disable internal logs
func WithInternalLogs(enabled bool) Option {
	return func(c *Checker) { c.enableInternalLogs = enabled }
}

// WithZapLogger sets up a zap logger. If filePath is empty, logs to console.
func WithZapLogger(filePath string) Option {
	return func(c *Checker) {
		var err error
		if filePath != "" {
			cfg := zap.NewProductionConfig()
			cfg.OutputPaths = []string{"stdout", filePath}
			c.logger, err = cfg.Build()
		} else {
			c.logger, err = zap.NewProduction(zap.AddCallerSkip(1))
		}
		if err != nil {
			panic(fmt.Sprintf("Failed to initialize Zap logger: %v", err))
		}
		c.loggerExplicit = true
	}
}

// WithLogger allows injecting a custom zap logger (useful in tests).
func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) {
		c.logger = l
		c.loggerExplicit = true
	}
}

// LogConsole toggles the stdout log output.
func LogConsole(enabled bool) Option {
	return func(c *Checker) { c.logConsoleOpt = &enabled }
}

// LogFile adds a file log output. Repeatable.
func LogFile(path string) Option {
	return func(c *Checker) { c.logFilesOpt = append(c.logFilesOpt, path) }
}

func DisableLogs() Option {
	return func(c *Checker) { c.logDisableOpt = true }
}

// WithLogRetention sets the max number of in-memory logs kept per endpoint.
func WithLogRetention(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.logRetention = n
		}
	}
}

// WithClock injects the time source used for grace windows.
func WithClock(clk Clock) Option {
	return func(c *Checker) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithGraceDelays replaces the per-kind grace table.
func WithGraceDelays(g GraceDelays) Option {
	return func(c *Checker) {
		c.graceDelays = make(GraceDelays, len(g))
		for k, d := range g {
			c.graceDelays[k] = d
		}
	}
}

// WithTimeoutReportingDelay sets how long a timeout must persist before it is reported.
func WithTimeoutReportingDelay(d time.Duration) Option {
	return func(c *Checker) {
		if c.graceDelays == nil {
			c.graceDelays = GraceDelays{}
		}
		c.graceDelays[KindTimeout] = d
	}
}

// WithContentPattern sets the pattern a 2xx body must match to count as healthy.
func WithContentPattern(re *regexp.Regexp) Option {
	return func(c *Checker) { c.contentPattern = re }
}

// WithSinks registers notification sinks, notified in the given order.
// Sinks are shared by all sites and must be safe for concurrent use.
func WithSinks(sinks ...Sink) Option {
	return func(c *Checker) { c.sinks = append(c.sinks, sinks...) }
}
