package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hollywoo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.NotEmpty(t, cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultMinSize, cfg.Scanner.MinSize)
	assert.Equal(t, DefaultExtensions, cfg.Scanner.Extensions)
	assert.Equal(t, 4, cfg.Scanner.Workers)
	assert.Equal(t, 100, cfg.Scanner.BatchSize)
	assert.Equal(t, ReprobeNever, cfg.Scanner.Reprobe)
	assert.Equal(t, "ffprobe", cfg.Probe.FFProbePath)
	assert.True(t, cfg.Probe.ReadTags)
	assert.Equal(t, "127.0.0.1:8484", cfg.Server.Addr())
	assert.False(t, cfg.Scheduler.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/index.db
  busy_timeout: 2s
log:
  level: debug
  format: json
scanner:
  min_size: 1048576
  extensions: [".MKV", "mp4"]
  workers: 2
  batch_size: 10
  reprobe: changed
  probe_rate: 1.5
server:
  port: 9000
scheduler:
  enabled: true
  spec: "0 3 * * *"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/index.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int64(1048576), cfg.Scanner.MinSize)
	assert.Equal(t, []string{"mkv", "mp4"}, cfg.Scanner.Extensions)
	assert.Equal(t, 2, cfg.Scanner.Workers)
	assert.Equal(t, ReprobeChanged, cfg.Scanner.Reprobe)
	assert.Equal(t, 1.5, cfg.Scanner.ProbeRate)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.Spec)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "scanner:\n  workers: 2\n")
	t.Setenv("HOLLYWOO_SCANNER_WORKERS", "8")
	t.Setenv("HOLLYWOO_DATABASE_PATH", "/srv/hollywoo.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Scanner.Workers)
	assert.Equal(t, "/srv/hollywoo.db", cfg.Database.Path)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *AppConfig {
		return &AppConfig{
			Database: DatabaseConfig{Path: "x.db", BusyTimeout: time.Second},
			Log:      LogConfig{Level: "info"},
			Scanner: ScannerConfig{
				Extensions: []string{"mp4"},
				Workers:    1,
				BatchSize:  1,
				Reprobe:    ReprobeNever,
			},
			Probe:  ProbeConfig{Timeout: time.Second},
			Server: ServerConfig{Port: 8484},
		}
	}

	require.NoError(t, validateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"empty database path", func(c *AppConfig) { c.Database.Path = "" }},
		{"zero busy timeout", func(c *AppConfig) { c.Database.BusyTimeout = 0 }},
		{"bad log level", func(c *AppConfig) { c.Log.Level = "verbose" }},
		{"negative min size", func(c *AppConfig) { c.Scanner.MinSize = -1 }},
		{"no extensions", func(c *AppConfig) { c.Scanner.Extensions = nil }},
		{"zero workers", func(c *AppConfig) { c.Scanner.Workers = 0 }},
		{"zero batch", func(c *AppConfig) { c.Scanner.BatchSize = 0 }},
		{"bad reprobe", func(c *AppConfig) { c.Scanner.Reprobe = "sometimes" }},
		{"negative rate", func(c *AppConfig) { c.Scanner.ProbeRate = -1 }},
		{"zero probe timeout", func(c *AppConfig) { c.Probe.Timeout = 0 }},
		{"bad port", func(c *AppConfig) { c.Server.Port = 70000 }},
		{"scheduler without spec", func(c *AppConfig) { c.Scheduler = SchedulerConfig{Enabled: true} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}
