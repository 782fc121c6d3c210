package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/jobguard/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the logger, teeing output to logFile when set.
// The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	closeFn := func() error { return nil }
	var w io.Writer = os.Stdout

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return closeFn, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closeFn = file.Close
	}

	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return closeFn, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `jobguard probe
==============

Checks a running jobguard service end to end: health, single and batch
predictions, order preservation, probability bounds and label consistency.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8001")
  -samples int
        Number of postings to generate and submit (default 100)
  -workers int
        Number of concurrent single-prediction requests (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed int
        Seed for posting generation (default 1)
  -log string
        Also write logs to this file
  -verbose
        Log every verdict
  -help
        Show this help message

Examples:
  # Probe a local service with default settings
  go run ./cmd/probe

  # Larger run against another host
  go run ./cmd/probe -samples 1000 -workers 16 -url http://jobguard:8001
`)
}
