// Package config handles the configuration directory, config.toml, and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional settings filename inside the config directory.
	ConfigFile = "config.toml"

	// StorageFile is the default local database filename.
	StorageFile = "tasks.db"

	// DefaultTimeout bounds each remote API call.
	DefaultTimeout = 5 * time.Second
)

// Environment variables read by Load. TODO_API_BASE wins over TODO_BACKEND_URL.
const (
	EnvAPIBase    = "TODO_API_BASE"
	EnvBackendURL = "TODO_BACKEND_URL"
	EnvAPIToken   = "TODO_API_TOKEN"
	EnvTimeout    = "TODO_TIMEOUT"
	EnvLogLevel   = "TODO_LOG_LEVEL"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIBase is the remote API base URL. Empty selects local storage.
	APIBase string

	// APIToken is sent as a bearer token on remote requests when set.
	APIToken string

	// Timeout bounds each remote call.
	Timeout time.Duration

	// StoragePath overrides the local database location.
	StoragePath string

	// LogLevel is the configured log level name.
	LogLevel string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileConfig mirrors config.toml.
type fileConfig struct {
	APIBase     string `toml:"api_base"`
	APIToken    string `toml:"api_token"`
	Timeout     string `toml:"timeout"`
	StoragePath string `toml:"storage_path"`
	LogLevel    string `toml:"log_level"`
}

// New creates a Config with defaults only.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) *Config {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Timeout: DefaultTimeout}
}

// Load builds a Config from, in increasing priority: defaults,
// <dir>/config.toml, and environment variables. A missing config file is
// not an error.
func Load(configDir string) (*Config, error) {
	cfg := New(configDir)

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile() error {
	path := c.FilePath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if v := strings.TrimSpace(fc.APIBase); v != "" {
		c.APIBase = v
	}
	if v := strings.TrimSpace(fc.APIToken); v != "" {
		c.APIToken = v
	}
	if fc.Timeout != "" {
		d, err := parseTimeout(fc.Timeout)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(fc.StoragePath); v != "" {
		c.StoragePath = v
	}
	if v := strings.TrimSpace(fc.LogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := firstNonEmpty(os.Getenv(EnvAPIBase), os.Getenv(EnvBackendURL)); v != "" {
		c.APIBase = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIToken)); v != "" {
		c.APIToken = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	return nil
}

// firstNonEmpty returns the first value that is non-empty after trimming.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", s)
	}
	return d, nil
}

// BackendEnabled reports whether a remote API base URL is configured.
func (c *Config) BackendEnabled() bool {
	return strings.TrimSpace(c.APIBase) != ""
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to config.toml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DatabasePath returns the local database path.
// Relative StoragePath values are resolved against the config directory.
func (c *Config) DatabasePath() string {
	if c.StoragePath == "" {
		return filepath.Join(c.Dir, StorageFile)
	}
	if filepath.IsAbs(c.StoragePath) {
		return c.StoragePath
	}
	return filepath.Join(c.Dir, c.StoragePath)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
