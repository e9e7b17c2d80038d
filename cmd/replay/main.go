package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/carelog/internal/replay"
	"github.com/okian/carelog/pkg/logger"
)

// Default configuration constants.
const (
	defaultDays        = 120
	defaultRuns        = 8
	defaultSeed        = 1
	defaultRetries     = 5
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		days       = flag.Int("days", defaultDays, "Days of synthetic conversation")
		runs       = flag.Int("runs", defaultRuns, "Pipeline runs over the same transcript")
		workers    = flag.Int("workers", runtime.NumCPU(), "Concurrent requests")
		seed       = flag.Uint64("seed", defaultSeed, "Transcript generator seed")
		retries    = flag.Int("retries", defaultRetries, "Retries per run when the service sheds load")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Save the generated transcript to this file")
		logFile    = flag.String("log", "", "Log file (default: replay_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Log every run")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp()
		return
	}

	if err := replay.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	config := &replay.Config{
		BaseURL:    *baseURL,
		Days:       *days,
		Runs:       *runs,
		Workers:    *workers,
		Seed:       *seed,
		Timeout:    *timeout,
		Retries:    *retries,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := replay.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Replay failed: " + err.Error() + "\n")
		cancel()
		stop()
		logger.Get().Fatal(context.Background(), "replay failed", logger.Error(err))
	}
}
