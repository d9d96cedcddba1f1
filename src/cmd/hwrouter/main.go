package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hwrouter/src/internal/auth"
	"hwrouter/src/internal/config"
	"hwrouter/src/internal/device"
	"hwrouter/src/internal/transport"
	"hwrouter/src/internal/version"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

var logger *log.Logger

func main() {
	if err := parseFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Set config file environment if specified
	if *configFile != "" {
		os.Setenv("HWROUTER_CONFIG_FILE", *configFile)
	}

	cfg, err := config.LoadWithCLI(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg)

	if err := initializeLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	code := run(cfg)
	shutdownLogger()
	os.Exit(code)
}

// applyFlagOverrides lets ergonomic short flags win over the config
// file and environment.
func applyFlagOverrides(cfg *config.Config) {
	if *routerURL != "" {
		cfg.Router.URL = *routerURL
	}
	if *username != "" {
		cfg.Router.Username = *username
	}
	if *password != "" {
		cfg.Router.Password = *password
	}
	if *attempts > 0 {
		cfg.Login.Attempts = *attempts
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logOutput != "" {
		cfg.Logging.Output = *logOutput
	}
}

func run(cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("msg", "hwrouter starting",
		"version", version.Short(),
		"url", cfg.Router.URL,
		"username", cfg.Router.Username)

	pass := cfg.Router.Password
	if pass == "" {
		var err error
		pass, err = promptPassword("Router password: ")
		if err != nil {
			logger.Error("msg", "Failed to read password", "error", err)
			return 1
		}
	}
	if pass == "" {
		logger.Error("msg", "Password is required")
		return 1
	}

	sess, err := transport.NewSession(transport.Options{
		BaseURL:        cfg.Router.URL,
		TimeoutSeconds: cfg.Login.TimeoutSeconds,
	}, logger)
	if err != nil {
		logger.Error("msg", "Failed to create HTTP session", "error", err)
		return 1
	}
	defer sess.Close()

	hs, err := login(ctx, cfg, sess, pass)
	if err != nil {
		logger.Error("msg", "Login failed",
			"attempts", cfg.Login.Attempts,
			"error", err)
		return 1
	}
	if !hs.Authenticated() {
		logger.Error("msg", "Login failed", "state", hs.State().String())
		return 1
	}

	info, err := device.DetectWAN(ctx, sess, logger)
	if err != nil {
		logger.Error("msg", "WAN detection failed", "error", err)
		return 1
	}
	fmt.Println(info.ExternalIPAddress)
	return 0
}

// login runs authentication attempts until one succeeds or the budget
// is spent. Each attempt is a fresh handshake with fresh secrets; the
// limiter paces attempts so a wrong password doesn't hammer the device.
func login(ctx context.Context, cfg *config.Config, sess *transport.Session, pass string) (*auth.Handshake, error) {
	limiter := rate.NewLimiter(rate.Every(time.Duration(cfg.Login.RetryDelayMS)*time.Millisecond), 1)

	var lastErr error
	for attempt := int64(1); attempt <= cfg.Login.Attempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		hs := auth.NewHandshake(sess, cfg.Router.Username, pass, logger)
		if err := hs.Login(ctx); err != nil {
			lastErr = err
			var protoErr *auth.ProtocolError
			if errors.As(err, &protoErr) {
				logger.Warn("msg", "Handshake attempt rejected",
					"attempt", attempt,
					"stage", protoErr.Stage,
					"error", err)
			} else {
				logger.Warn("msg", "Handshake attempt failed",
					"attempt", attempt,
					"error", err)
			}
			continue
		}
		return hs, nil
	}
	return nil, lastErr
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pass), nil
}

// initializeLogger sets up the logger based on configuration
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	configArgs := []string{
		fmt.Sprintf("level=%d", levelValue),
		"disable_file=true",
	}

	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "enable_stdout=false")
	case "stdout":
		configArgs = append(configArgs, "enable_stdout=true", "stdout_target=stdout")
	case "stderr":
		configArgs = append(configArgs, "enable_stdout=true", "stdout_target=stderr")
	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}

	if err := logger.ApplyConfigString(configArgs...); err != nil {
		return err
	}
	return logger.Start()
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
		}
	}
}
