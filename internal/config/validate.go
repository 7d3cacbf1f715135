package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks cross-field constraints and fills derived defaults.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.url %q is not an absolute URL", c.Backend.URL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}
	if c.Sync.PageSize <= 0 {
		return fmt.Errorf("sync.page_size must be positive")
	}

	level := strings.ToLower(c.Log.Level)
	if !slices.Contains(logLevels, level) {
		return fmt.Errorf("log.level %q not one of %v", c.Log.Level, logLevels)
	}
	c.Log.Level = level
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be positive")
	}
	if c.Log.Retention <= 0 {
		return fmt.Errorf("log.retention must be positive")
	}

	// A device without an explicit name falls back to its hostname so
	// validated_by is never blank on uploaded rows.
	if c.Device.Name == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "validador"
		}
		c.Device.Name = host
	}

	return nil
}
