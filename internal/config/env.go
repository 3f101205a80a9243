package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default and file values
func LoadFromEnv(cfg *Config) {
	// Resolver configuration
	if minSize := os.Getenv("ACTIVEWIN_MIN_WINDOW_SIZE"); minSize != "" {
		if size, err := strconv.ParseFloat(minSize, 64); err == nil && size > 0 {
			cfg.Resolver.MinWindowSize = size
		}
	}

	// Watch configuration
	if pollInterval := os.Getenv("ACTIVEWIN_POLL_INTERVAL"); pollInterval != "" {
		if interval, ok := parseDuration(pollInterval); ok && interval > 0 {
			if interval >= cfg.Watch.MinPollInterval && interval <= cfg.Watch.MaxPollInterval {
				cfg.Watch.PollInterval = interval
			}
		}
	}

	if queryTimeout := os.Getenv("ACTIVEWIN_QUERY_TIMEOUT"); queryTimeout != "" {
		if timeout, ok := parseDuration(queryTimeout); ok && timeout >= 0 {
			cfg.Watch.QueryTimeout = timeout
		}
	}

	// Database configuration
	if dbPath := os.Getenv("ACTIVEWIN_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Daemon configuration
	if pidFile := os.Getenv("ACTIVEWIN_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Web configuration
	if webHost := os.Getenv("ACTIVEWIN_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("ACTIVEWIN_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}

	// Log configuration
	if level := os.Getenv("ACTIVEWIN_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if logFile := os.Getenv("ACTIVEWIN_LOG_FILE"); logFile != "" {
		cfg.Log.File = logFile
	}
}

// parseDuration accepts Go duration strings ("1.5s") and bare seconds ("10").
func parseDuration(value string) (time.Duration, bool) {
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), true
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, true
	}
	return 0, false
}

// New creates a new Config from defaults, the config file and the environment.
// A missing config file is not an error.
func New() (*Config, error) {
	cfg := Default()
	if err := LoadFile(cfg, FilePath()); err != nil {
		return cfg, err
	}
	LoadFromEnv(cfg)
	return cfg, nil
}
