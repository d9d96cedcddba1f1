package config

import "hwrouter/src/internal/transport"

type Config struct {
	Router  RouterConfig  `toml:"router"`
	Login   LoginConfig   `toml:"login"`
	Logging LoggingConfig `toml:"logging"`
}

type RouterConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type LoginConfig struct {
	// Attempts is how many full handshakes to try before giving up.
	// Each attempt starts from scratch with fresh handshake state.
	Attempts       int64 `toml:"attempts"`
	RetryDelayMS   int64 `toml:"retry_delay_ms"`
	TimeoutSeconds int64 `toml:"timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Output string `toml:"output"` // stdout, stderr, none
}

func defaults() *Config {
	return &Config{
		Router: RouterConfig{
			URL:      transport.DefaultBaseURL,
			Username: "admin",
		},
		Login: LoginConfig{
			Attempts:       1,
			RetryDelayMS:   2000,
			TimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
		},
	}
}
