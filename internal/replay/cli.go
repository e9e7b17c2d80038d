package replay

import (
	"fmt"
	"os"
	"time"

	"github.com/okian/carelog/pkg/logger"
)

// SetupLogging logs to stdout and, as JSON lines, to logFile. If logFile is
// empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "replay_log_" + time.Now().Format("20060102_150405") + ".log"
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithFile(logFile), logger.WithLevel(level)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	os.Stdout.WriteString(`carelog replay
==============

Replays a deterministic synthetic member journey through a running carelog
service several times concurrently and checks that every run returns the
same tables.

Usage:
  go run ./cmd/replay [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -days int
        Days of synthetic conversation (default 120)
  -runs int
        Pipeline runs over the same transcript (default 8)
  -workers int
        Concurrent requests (default CPU cores)
  -seed uint
        Transcript generator seed (default 1)
  -retries int
        Retries per run when the service sheds load (default 5)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Save the generated transcript to this file
  -log string
        Log file (default: replay_log_TIMESTAMP.log)
  -verbose
        Log every run
  -help
        Show this help message

Examples:
  # Replay with default settings
  go run ./cmd/replay

  # A year of conversation, 32 runs, transcript kept for carelog run
  go run ./cmd/replay -days 365 -runs 32 -output testdata/journey.json
`)
}
