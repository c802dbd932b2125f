// Package config loads settings for the exprtree CLI and tool server.
//
// Values are layered, lowest to highest: built-in defaults, a YAML config
// file, EXPRTREE_* environment variables, then command-line flags that were
// explicitly set.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultAddr              = ":8080"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultMaxBodyBytes      = 1 << 20
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultOutput            = "text"
	DefaultConfigFile        = "exprtree.yaml"
	EnvPrefix                = "EXPRTREE_"
)

// Output formats understood by the CLI.
var Outputs = []string{"text", "json", "yaml"}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Config holds all settings.
type Config struct {
	// Addr is the listen address of the tool server.
	Addr string `koanf:"addr"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`
	// MaxBodyBytes caps the size of a tool request body.
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	// Output is the CLI output format: text, json or yaml.
	Output  string `koanf:"output"`
	Verbose bool   `koanf:"verbose"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Addr:              DefaultAddr,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		MaxBodyBytes:      DefaultMaxBodyBytes,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		Output:            DefaultOutput,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be text or json", c.LogFormat)
	}
	if !slices.Contains(Outputs, strings.ToLower(c.Output)) {
		return fmt.Errorf("invalid output %q: must be one of %s", c.Output, strings.Join(Outputs, ", "))
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}

// Logger builds the structured logger described by c. Verbose forces the
// debug level.
func (c *Config) Logger() *slog.Logger {
	level, ok := logLevels[strings.ToLower(c.LogLevel)]
	if !ok {
		level = slog.LevelInfo
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
