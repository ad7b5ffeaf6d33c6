// Package uptime implements the high-level Checker public API.
package uptime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Checker monitors a set of endpoints. Every endpoint owns its own debounce
// engine and reporter and is probed by a dedicated loop, so checks of one
// endpoint never overlap and its outcomes are decided in probe order.
type Checker struct {
	httpClient   *http.Client
	numWorkers   int
	logLevel     LogLevel
	logRetention int

	clock          Clock
	graceDelays    GraceDelays
	contentPattern *regexp.Regexp
	sinks          []Sink

	enableInternalLogs bool
	logger             *zap.Logger
	loggerExplicit     bool // set when WithLogger/WithZapLogger used

	// logging configuration accumulated by options
	logConsoleOpt *bool
	logFilesOpt   []string
	logDisableOpt bool

	prober  *Prober
	slots   chan struct{}
	results chan Result
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	targets  map[string]*target
	order    []string
	logs     map[string][]Result
	started  bool
	stopped  bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

type target struct {
	endpoint Endpoint
	schedule cron.Schedule
	reporter *Reporter
	stop     chan struct{}

	mu   sync.Mutex
	last *Result
}

// ===== Constructor =====
func New(opts ...Option) *Checker {
	c := &Checker{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		numWorkers:   50,
		logLevel:     LogInfo,
		logRetention: 100,
		clock:        SystemClock(),
		graceDelays:  DefaultGraceDelays(),
		results:      make(chan Result, 1000),
		stopCh:       make(chan struct{}),
		targets:      make(map[string]*target),
		logs:         make(map[string][]Result),
		logger:       nil, // build after applying options
	}
	for _, opt := range opts {
		opt(c)
	}
	// Build logger after options applied unless explicitly provided
	if !c.loggerExplicit {
		c.logger = c.buildLoggerFromConfig()
	}
	// Safety fallback
	if c.logger == nil {
		c.logger = defaultConsoleLogger()
	}
	if c.numWorkers < 1 {
		c.numWorkers = 1
	}
	c.slots = make(chan struct{}, c.numWorkers)
	c.prober = NewProber(c.httpClient, c.contentPattern, c.graceDelays, c.clock)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

func defaultConsoleLogger() *zap.Logger {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func (c *Checker) buildLoggerFromConfig() *zap.Logger {
	// If disabled explicitly
	if c.logDisableOpt {
		return zap.NewNop()
	}

	// Determine console default: true unless explicitly set to false
	console := true
	if c.logConsoleOpt != nil {
		console = *c.logConsoleOpt
	}

	// Build output paths
	var paths []string
	seen := map[string]struct{}{}
	if console {
		paths = append(paths, "stdout")
		seen["stdout"] = struct{}{}
	}
	for _, f := range c.logFilesOpt {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		paths = append(paths, f)
	}

	if len(paths) == 0 {
		// No outputs selected: default to console
		return defaultConsoleLogger()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = paths
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Logger returns the logger the checker writes to.
func (c *Checker) Logger() *zap.Logger { return c.logger }

// ===== Public API =====

// Start launches one monitoring loop per registered endpoint. Endpoints added
// later are started as they are registered.
func (c *Checker) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.stopped {
		return
	}
	c.started = true
	for _, id := range c.order {
		c.launch(c.targets[id])
	}
	c.ilog("Scheduler started with %d sites", len(c.order))
}

// Stop cancels all loops and in-flight probes, waits for them to exit and
// closes the results channel. A notification being fanned out may be cut short.
func (c *Checker) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()

		close(c.stopCh)
		c.cancel()
		c.wg.Wait()
		close(c.results)
		c.ilog("Checker stopped")
		_ = c.logger.Sync()
	})
}

// AddSite registers an endpoint, applying defaults. An empty ID is replaced by a UUID.
func (c *Checker) AddSite(ep Endpoint) (Endpoint, error) {
	if ep.Frequency < 0 {
		return ep, fmt.Errorf("site %s: frequency must not be negative, got %v", ep.Name, ep.Frequency)
	}
	ep = withDefaults(ep)
	var sched cron.Schedule
	if ep.Schedule != "" {
		s, err := cron.ParseStandard(ep.Schedule)
		if err != nil {
			return ep, fmt.Errorf("site %s: invalid schedule %q: %w", ep.Name, ep.Schedule, err)
		}
		sched = s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ep, fmt.Errorf("site %s: checker is stopped", ep.Name)
	}
	if _, ok := c.targets[ep.ID]; ok {
		return ep, fmt.Errorf("site %s: duplicate id %q", ep.Name, ep.ID)
	}

	t := &target{
		endpoint: ep,
		schedule: sched,
		reporter: NewReporter(ep, NewEngine(c.clock), c.logger, c.sinks...),
		stop:     make(chan struct{}),
	}
	c.targets[ep.ID] = t
	c.order = append(c.order, ep.ID)
	c.ilog("Registered site: %s (%s)", ep.Name, ep.URL)

	if c.started {
		c.launch(t)
	}
	return ep, nil
}

// AddSitesBulk registers every endpoint it can and returns the combined errors of the rest.
func (c *Checker) AddSitesBulk(sites []Endpoint) error {
	var errs error
	added := 0
	for _, ep := range sites {
		if _, err := c.AddSite(ep); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		added++
	}
	c.ilog("Registered %d sites", added)
	return errs
}

// RemoveSite stops monitoring the endpoint and forgets its history.
func (c *Checker) RemoveSite(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.targets[id]
	if !ok {
		return false
	}
	close(t.stop)
	delete(c.targets, id)
	delete(c.logs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.ilog("Removed site: %s", t.endpoint.Name)
	return true
}

// LoadFromFile reads a JSON array of endpoints whose frequency is given in seconds.
func (c *Checker) LoadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	var eps []Endpoint
	if err := json.Unmarshal(data, &eps); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	for i := range eps {
		eps[i].Frequency *= time.Second
	}
	c.ilog("Loaded %d sites from file: %s", len(eps), filePath)
	return c.AddSitesBulk(eps)
}

// Results channel
func (c *Checker) Results() <-chan Result { return c.results }

// GetLogs returns last N results
func (c *Checker) GetLogs(id string, limit int) []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	logs := c.logs[id]
	if limit >= 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return append([]Result(nil), logs...)
}

// Status returns the most recent result for the endpoint.
func (c *Checker) Status(id string) (Result, bool) {
	c.mu.Lock()
	t, ok := c.targets[id]
	c.mu.Unlock()
	if !ok {
		return Result{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return Result{Endpoint: t.endpoint}, true
	}
	return *t.last, true
}

// ListSites returns all registered sites
func (c *Checker) ListSites() []Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Endpoint, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.targets[id].endpoint)
	}
	return out
}

func withDefaults(ep Endpoint) Endpoint {
	if ep.ID == "" {
		ep.ID = uuid.NewString()
	}
	if ep.Name == "" {
		ep.Name = ep.URL
	}
	if ep.Frequency == 0 {
		ep.Frequency = 30 * time.Second
	}
	if ep.ExpectedStatus == 0 {
		ep.ExpectedStatus = 200
	}
	if ep.Method == "" {
		ep.Method = "GET"
	}
	return ep
}
