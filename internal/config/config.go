package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig represents the main application configuration
type AppConfig struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Probe     ProbeConfig     `mapstructure:"probe"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// DatabaseConfig locates the index file
type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ScannerConfig controls which files are indexed and how fast
type ScannerConfig struct {
	MinSize    int64    `mapstructure:"min_size"`
	Extensions []string `mapstructure:"extensions"`
	Workers    int      `mapstructure:"workers"`
	BatchSize  int      `mapstructure:"batch_size"`
	Reprobe    string   `mapstructure:"reprobe"`
	ProbeRate  float64  `mapstructure:"probe_rate"` // probes per second, 0 is unlimited
}

// ProbeConfig configures metadata extraction
type ProbeConfig struct {
	FFProbePath string        `mapstructure:"ffprobe_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ReadTags    bool          `mapstructure:"read_tags"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port for listening
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SchedulerConfig controls periodic re-scans
type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"`
}

// TracingConfig represents tracing configuration
type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Re-probe policies
const (
	ReprobeNever   = "never"
	ReprobeChanged = "changed"
	ReprobeAlways  = "always"
)

// DefaultExtensions are the video containers the scanner recognizes
var DefaultExtensions = []string{"avi", "mp4", "m4v", "mkv", "mpg", "mpeg", "wmv", "m2ts"}

// DefaultMinSize is the smallest file the scanner indexes, 100 MiB
const DefaultMinSize int64 = 100 * 1024 * 1024

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hollywoo.db"
	}
	return filepath.Join(home, ".local", "share", "hollywoo", "hollywoo.db")
}

// Load reads the configuration. path names a config file; if empty,
// hollywoo.yaml is looked up in the working directory and in
// $HOME/.config/hollywoo. A missing file is not an error. Environment
// variables like HOLLYWOO_SCANNER_WORKERS override file values.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hollywoo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "hollywoo"))
		}
	}

	v.SetDefault("database.path", defaultDatabasePath())
	v.SetDefault("database.busy_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("scanner.min_size", DefaultMinSize)
	v.SetDefault("scanner.extensions", DefaultExtensions)
	v.SetDefault("scanner.workers", 4)
	v.SetDefault("scanner.batch_size", 100)
	v.SetDefault("scanner.reprobe", ReprobeNever)
	v.SetDefault("scanner.probe_rate", 0)

	v.SetDefault("probe.ffprobe_path", "ffprobe")
	v.SetDefault("probe.timeout", 30*time.Second)
	v.SetDefault("probe.read_tags", true)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8484)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.spec", "@every 6h")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.otlp_endpoint", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	v.SetEnvPrefix("HOLLYWOO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	normalizeExtensions(&config.Scanner)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func normalizeExtensions(s *ScannerConfig) {
	exts := make([]string, 0, len(s.Extensions))
	for _, ext := range s.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	s.Extensions = exts
}

// validateConfig validates the configuration values
func validateConfig(config *AppConfig) error {
	if config.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if config.Database.BusyTimeout <= 0 {
		return fmt.Errorf("database busy timeout must be positive")
	}

	switch config.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.Log.Level)
	}

	if config.Scanner.MinSize < 0 {
		return fmt.Errorf("scanner min_size cannot be negative")
	}

	if len(config.Scanner.Extensions) == 0 {
		return fmt.Errorf("scanner needs at least one extension")
	}

	if config.Scanner.Workers <= 0 {
		return fmt.Errorf("scanner workers must be positive")
	}

	if config.Scanner.BatchSize <= 0 {
		return fmt.Errorf("scanner batch_size must be positive")
	}

	switch config.Scanner.Reprobe {
	case ReprobeNever, ReprobeChanged, ReprobeAlways:
	default:
		return fmt.Errorf("unknown reprobe policy %q", config.Scanner.Reprobe)
	}

	if config.Scanner.ProbeRate < 0 {
		return fmt.Errorf("scanner probe_rate cannot be negative")
	}

	if config.Probe.Timeout <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", config.Server.Port)
	}

	if config.Scheduler.Enabled && config.Scheduler.Spec == "" {
		return fmt.Errorf("scheduler is enabled but has no spec")
	}

	return nil
}
