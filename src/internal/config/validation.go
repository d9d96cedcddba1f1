package config

import (
	"fmt"
	"strings"
)

func (c *Config) validate() error {
	if c.Router.URL == "" {
		return fmt.Errorf("router.url cannot be empty")
	}
	if !strings.HasPrefix(c.Router.URL, "http://") && !strings.HasPrefix(c.Router.URL, "https://") {
		return fmt.Errorf("router.url must start with http:// or https://: %q", c.Router.URL)
	}
	if c.Router.Username == "" {
		return fmt.Errorf("router.username cannot be empty")
	}

	if c.Login.Attempts < 1 {
		return fmt.Errorf("login.attempts must be at least 1, got %d", c.Login.Attempts)
	}
	if c.Login.RetryDelayMS < 0 {
		return fmt.Errorf("login.retry_delay_ms cannot be negative, got %d", c.Login.RetryDelayMS)
	}
	if c.Login.TimeoutSeconds < 1 {
		return fmt.Errorf("login.timeout_seconds must be at least 1, got %d", c.Login.TimeoutSeconds)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error: %q", c.Logging.Level)
	}

	switch c.Logging.Output {
	case "stdout", "stderr", "none":
	default:
		return fmt.Errorf("logging.output must be one of stdout, stderr, none: %q", c.Logging.Output)
	}

	return nil
}
