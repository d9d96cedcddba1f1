package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lixenwraith/log"
)

// Command-line flags
var (
	// General flags
	configFile  = flag.String("config", "", "Config file path")
	routerURL   = flag.String("url", "", "Router management URL (overrides config)")
	username    = flag.String("user", "", "Login username (overrides config)")
	password    = flag.String("password", "", "Login password (prompts if not provided)")
	attempts    = flag.Int64("attempts", 0, "Login attempts before giving up (overrides config)")
	showVersion = flag.Bool("version", false, "Show version information")

	// Logging flags
	logOutput = flag.String("log-output", "", "Log output: stdout, stderr, none (overrides config)")
	logLevel  = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
)

func init() {
	flag.Usage = customUsage
}

func customUsage() {
	fmt.Fprintf(os.Stderr, "hwrouter - Huawei Router Login Client\n\n")
	fmt.Fprintf(os.Stderr, "Authenticates against the router's web API with a SCRAM-style\n")
	fmt.Fprintf(os.Stderr, "handshake and reports the detected WAN address.\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")

	fmt.Fprintf(os.Stderr, "\nGeneral:\n")
	fmt.Fprintf(os.Stderr, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(os.Stderr, "  -url string\n\tRouter management URL (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -user string\n\tLogin username (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -password string\n\tLogin password (prompts if not provided)\n")
	fmt.Fprintf(os.Stderr, "  -attempts int\n\tLogin attempts before giving up (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -version\n\tShow version information\n")

	fmt.Fprintf(os.Stderr, "\nLogging:\n")
	fmt.Fprintf(os.Stderr, "  -log-output string\n\tLog output: stdout, stderr, none (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -log-level string\n\tLog level: debug, info, warn, error (overrides config)\n")

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Log in with the default address and prompt for the password\n")
	fmt.Fprintf(os.Stderr, "  %s\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Log in to a specific router with debug logging\n")
	fmt.Fprintf(os.Stderr, "  %s -url http://192.168.8.1 -user admin -log-level debug\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Retry a flaky router a few times\n")
	fmt.Fprintf(os.Stderr, "  %s -attempts 3\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  HWROUTER_CONFIG_FILE  Config file path\n")
	fmt.Fprintf(os.Stderr, "  HWROUTER_CONFIG_DIR   Config directory\n")
}

func parseFlags() error {
	flag.Parse()

	// Validate log-output flag if provided
	if *logOutput != "" {
		validOutputs := map[string]bool{
			"stdout": true, "stderr": true, "none": true,
		}
		if !validOutputs[*logOutput] {
			return fmt.Errorf("invalid log-output: %s (valid: stdout, stderr, none)", *logOutput)
		}
	}

	// Validate log-level flag if provided
	if *logLevel != "" {
		if _, err := parseLogLevel(*logLevel); err != nil {
			return fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", *logLevel)
		}
	}

	if *attempts < 0 {
		return fmt.Errorf("invalid attempts: %d (must be positive)", *attempts)
	}

	return nil
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
