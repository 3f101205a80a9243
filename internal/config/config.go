package config

import (
	"fmt"
	"os"
	"time"

	"github.com/activewin/activewin/pkg/window"
)

// Config holds all application configuration
type Config struct {
	// Resolver configuration
	Resolver ResolverConfig `yaml:"resolver"`

	// Watch loop configuration
	Watch WatchConfig `yaml:"watch"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// Web server configuration
	Web WebConfig `yaml:"web"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// ResolverConfig holds the window selection rules
type ResolverConfig struct {
	MinWindowSize float64 `yaml:"min_window_size"` // Minimum width and height of the active window
}

// WatchConfig holds polling behavior configuration
type WatchConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"` // How often to sample the active window
	MinPollInterval time.Duration `yaml:"-"`             // Minimum allowed poll interval
	MaxPollInterval time.Duration `yaml:"-"`             // Maximum allowed poll interval
	QueryTimeout    time.Duration `yaml:"query_timeout"` // Bound on each window system query, 0 disables
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database file
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `yaml:"pid_file"` // Path to PID file for daemon management
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string `yaml:"host"` // Host to bind web server to
	Port int    `yaml:"port"` // Port for web server
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
	File  string `yaml:"file"`  // Empty logs to stderr
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Resolver: ResolverConfig{
			MinWindowSize: window.DefaultMinWindowSize,
		},
		Watch: WatchConfig{
			PollInterval:    time.Second,
			MinPollInterval: 100 * time.Millisecond,
			MaxPollInterval: 300 * time.Second,
			QueryTimeout:    2 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/activewin/activewin.db
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/activewin-%d.pid", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid()%50000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Resolver.MinWindowSize <= 0 {
		return fmt.Errorf("minimum window size must be positive, got %v", c.Resolver.MinWindowSize)
	}

	if c.Watch.PollInterval < c.Watch.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Watch.PollInterval, c.Watch.MinPollInterval)
	}

	if c.Watch.PollInterval > c.Watch.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Watch.PollInterval, c.Watch.MaxPollInterval)
	}

	if c.Watch.QueryTimeout < 0 {
		return fmt.Errorf("query timeout cannot be negative")
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", c.Log.Level)
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Watch.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Watch.MinPollInterval)
	}
	if interval > c.Watch.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Watch.MaxPollInterval)
	}
	c.Watch.PollInterval = interval
	return nil
}

// SetMinWindowSize sets the resolver size threshold with validation
func (c *Config) SetMinWindowSize(size float64) error {
	if size <= 0 {
		return fmt.Errorf("minimum window size must be positive, got %v", size)
	}
	c.Resolver.MinWindowSize = size
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Resolver:
    Min Window Size: %v
  Watch:
    Poll Interval: %v
    Min Interval: %v
    Max Interval: %v
    Query Timeout: %v
  Database:
    Path: %s
  Daemon:
    PID File: %s
  Web:
    Host: %s
    Port: %d
  Log:
    Level: %s
    File: %s`,
		c.Resolver.MinWindowSize,
		c.Watch.PollInterval,
		c.Watch.MinPollInterval,
		c.Watch.MaxPollInterval,
		c.Watch.QueryTimeout,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.Web.Host,
		c.Web.Port,
		c.Log.Level,
		c.Log.File,
	)
}
