package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/jobguard/internal/probe"
)

// Default configuration constants.
const (
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", probe.DefaultBaseURL, "Base URL of the service")
		samples = flag.Int("samples", probe.DefaultSamples, "Number of postings to generate and submit")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent single-prediction requests")
		timeout = flag.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
		seed    = flag.Int64("seed", probe.DefaultSeed, "Seed for posting generation")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Log every verdict")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp(os.Stdout)
		return
	}

	closeLog, err := probe.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &probe.Config{
		BaseURL: *baseURL,
		Samples: *samples,
		Workers: *workers,
		Timeout: *timeout,
		Seed:    *seed,
		Verbose: *verbose,
	}

	if _, err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		stop()
		cancel()
		_ = closeLog()
		os.Exit(1)
	}
}
