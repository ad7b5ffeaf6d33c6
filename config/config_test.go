package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/amartya2002/uptime-notifier/uptime"
)

const sampleYAML = `
log:
  level: debug
  console: false
probe:
  timeout: 2s
  timeout_reporting_delay: 3s
  expected_content_pattern: "ok"
  grace_delays:
    empty_response: 10s
targets:
  - id: api
    url: http://localhost:2000/
  - id: web
    name: Website
    url: https://example.com
    schedule: "@every 30s"
    expected_status: 204
sinks:
  - type: log
  - type: webhook
    name: ops
    url: http://hooks.local/notify
    timeout: 1s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uptime.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ParsesAndNormalizes(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, DefaultWorkers, cfg.Probe.Workers)
	require.NotNil(t, cfg.Probe.TimeoutReportingDelay)
	assert.Equal(t, 3*time.Second, *cfg.Probe.TimeoutReportingDelay)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)

	require.Len(t, cfg.Targets, 2)
	api := cfg.Targets[0]
	assert.Equal(t, "GET", api.Method)
	assert.Equal(t, 200, api.ExpectedStatus)
	assert.Equal(t, DefaultInterval, api.Interval)
	assert.Equal(t, "http://localhost:2000/", api.Name)

	web := cfg.Targets[1]
	assert.Zero(t, web.Interval, "schedule replaces the interval")
	assert.Equal(t, 204, web.ExpectedStatus)

	assert.Equal(t, "log", cfg.Sinks[0].Name)
	assert.Equal(t, "ops", cfg.Sinks[1].Name)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "targets:\n  - url: http://localhost:2000\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultProbeTimeout, cfg.Probe.Timeout)
	assert.Equal(t, uptime.DefaultTimeoutReportingDelay, *cfg.Probe.TimeoutReportingDelay)
	assert.Equal(t, uptime.DefaultContentPattern, cfg.Probe.ExpectedContentPattern)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ExplicitZeroTimeoutDelayIsKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, "probe:\n  timeout_reporting_delay: 0s\ntargets:\n  - url: http://localhost:2000\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.GraceDelays()[uptime.KindTimeout])
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("probe:\n  timeoutt: 1s\n"))
	require.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	neg := -time.Second
	cfg := &Config{
		Log: LogConfig{Level: "loud"},
		Probe: ProbeConfig{
			TimeoutReportingDelay:  &neg,
			ExpectedContentPattern: "(",
			GraceDelays:            map[string]time.Duration{"sleepy": time.Second},
		},
		Targets: []TargetConfig{
			{ID: "a", URL: "ftp://x"},
			{ID: "a", URL: "http://ok", Schedule: "every now and then"},
		},
		Sinks: []SinkConfig{{Type: "pager"}, {Type: SinkFile}, {Type: SinkWebhook}},
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 10)
	assert.Contains(t, err.Error(), `duplicate id`)
	assert.Contains(t, err.Error(), `unknown kind "sleepy"`)
}

func TestValidate_RequiresTargets(t *testing.T) {
	err := Validate(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one target")
}

func TestGraceDelays_MergesOverrides(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	Normalize(cfg)

	g := cfg.GraceDelays()
	assert.Equal(t, 3*time.Second, g[uptime.KindTimeout])
	assert.Equal(t, 10*time.Second, g[uptime.KindEmptyResponse])
	assert.Zero(t, g.For(uptime.HTTPError(500)))
}

func TestEndpoints(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	eps := cfg.Endpoints()
	require.Len(t, eps, 2)
	assert.Equal(t, "api", eps[0].ID)
	assert.Equal(t, time.Second, eps[0].Frequency)
	assert.Equal(t, "@every 30s", eps[1].Schedule)
	assert.Equal(t, "Website", eps[1].Name)
}

func TestBuildSinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.log")
	cfg := &Config{Sinks: []SinkConfig{
		{Type: SinkLog, Name: "log"},
		{Type: SinkFile, Name: "file", Path: path},
		{Type: SinkWebhook, Name: "ops", URL: "http://hooks.local"},
	}}

	sinks, closeFn, err := cfg.BuildSinks(zap.NewNop())
	require.NoError(t, err)
	defer func() { require.NoError(t, closeFn()) }()

	require.Len(t, sinks, 3)
	assert.Equal(t, "log", sinks[0].Name())
	assert.Equal(t, "file", sinks[1].Name())
	assert.Equal(t, "ops", sinks[2].Name())
	assert.FileExists(t, path)
}

func TestOptions_BuildsChecker(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	opts, err := cfg.Options(zap.NewNop(), nil)
	require.NoError(t, err)

	c := uptime.New(opts...)
	require.NoError(t, c.AddSitesBulk(cfg.Endpoints()))
	assert.Len(t, c.ListSites(), 2)
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]uptime.LogLevel{
		"":      uptime.LogInfo,
		"info":  uptime.LogInfo,
		"none":  uptime.LogNone,
		"error": uptime.LogError,
		"debug": uptime.LogDebug,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLogLevel("trace")
	assert.Error(t, err)
}
