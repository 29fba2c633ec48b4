package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultNCEndpoint   = "https://api.tjweather.com/nc/beta"
	DefaultJSONEndpoint = "https://api.tjweather.com/beta"
)

var (
	ErrMissingAPIKey   = errors.New("API_KEY is not configured, set it in the environment or in a .env file")
	ErrMissingEndpoint = errors.New("endpoint is not configured")
)

// Config is an immutable snapshot of the resolved configuration.
type Config struct {
	APIKey       string    `mapstructure:"api_key"`
	NCEndpoint   string    `mapstructure:"nc_endpoint"`
	JSONEndpoint string    `mapstructure:"json_endpoint"`
	Log          LogConfig `mapstructure:",squash"`

	// Sources lists the files merged into this snapshot, lowest priority first.
	Sources []string `mapstructure:"-"`
	// Warnings holds files that existed but could not be read.
	Warnings []string `mapstructure:"-"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"log_level"`  // debug, info, warn, error
	Format string `mapstructure:"log_format"` // json, text
}

// Loader resolves configuration from, in increasing priority: the user file
// (~/.config/tjweather/.env), .env in the working directory, an explicit file,
// and the process environment.
type Loader struct {
	HomeDir string
	WorkDir string
	File    string
}

// NewLoader creates a loader for the current user and working directory.
// file is an optional extra env file with priority over both default files.
func NewLoader(file string) *Loader {
	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	return &Loader{HomeDir: home, WorkDir: wd, File: file}
}

// Load reads the configuration once. Callers keep the returned snapshot and
// pass it along; nothing is cached here.
func Load(file string) (*Config, error) {
	return NewLoader(file).Load()
}

// Load builds a new snapshot from the current files and environment.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("api_key", "")
	v.SetDefault("nc_endpoint", DefaultNCEndpoint)
	v.SetDefault("json_endpoint", DefaultJSONEndpoint)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	var sources, warnings []string
	for _, path := range l.files() {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) && path != l.File {
				continue
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.MergeInConfig(); err != nil {
			if path == l.File {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			warnings = append(warnings, fmt.Sprintf("could not load config file %s: %v", path, err))
			continue
		}
		sources = append(sources, path)
	}

	// Environment wins over every file; empty variables are ignored.
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Sources = sources
	cfg.Warnings = warnings

	return &cfg, nil
}

// Reload returns a fresh snapshot. Snapshots already handed out are untouched.
func (l *Loader) Reload() (*Config, error) {
	return l.Load()
}

func (l *Loader) files() []string {
	var files []string
	if l.HomeDir != "" {
		files = append(files, UserConfigPath(l.HomeDir))
	}
	if l.WorkDir != "" {
		files = append(files, filepath.Join(l.WorkDir, ".env"))
	}
	if l.File != "" {
		files = append(files, l.File)
	}
	return files
}

// Validate returns every configuration problem; an empty result means the
// snapshot is usable.
func (c *Config) Validate() []error {
	var problems []error
	if c.APIKey == "" {
		problems = append(problems, ErrMissingAPIKey)
	}
	if c.NCEndpoint == "" {
		problems = append(problems, fmt.Errorf("%w: NC_ENDPOINT", ErrMissingEndpoint))
	}
	if c.JSONEndpoint == "" {
		problems = append(problems, fmt.Errorf("%w: JSON_ENDPOINT", ErrMissingEndpoint))
	}
	return problems
}

// Err joins the problems reported by Validate.
func (c *Config) Err() error {
	return errors.Join(c.Validate()...)
}

// MaskedAPIKey hides the key for display.
func (c *Config) MaskedAPIKey() string {
	if c.APIKey == "" {
		return "not set"
	}
	return "***set***"
}

// WithLogLevel returns a copy of the snapshot using level.
func (c *Config) WithLogLevel(level string) *Config {
	cp := *c
	cp.Log.Level = level
	return &cp
}

// NewLogger creates a new slog.Logger based on the configuration. Output goes
// to w; stdout is reserved for command output and the MCP stdio transport.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
