package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/carelog/internal/adapters/stream"
	"github.com/okian/carelog/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

const (
	retryBackoff         = 100 * time.Millisecond
	percentageMultiplier = 100
)

type runResult struct {
	doc     string
	runID   string
	retries int
}

// Run replays one generated transcript through the pipeline cfg.Runs times
// and checks that every run returns the same tables.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		ReplayID:  uuid.NewString(),
		Runs:      cfg.Runs,
		StartTime: time.Now(),
	}
	log := logger.Get()

	log.Info(ctx, "starting carelog replay",
		logger.String("replayID", stats.ReplayID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("days", cfg.Days),
		logger.Int("runs", cfg.Runs),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed))

	client := newHTTPClient(cfg.BaseURL, stats.ReplayID, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	// Step 2: Generate the transcript
	records := Generate(cfg.Days, cfg.Seed)
	stats.Messages = len(records)
	log.Info(ctx, "generated transcript", logger.Int("messages", len(records)))

	// Step 3: Run the pipeline concurrently
	results, err := submitRuns(ctx, cfg, client, records)
	if err != nil {
		return stats, err
	}

	// Step 4: Verify results
	if err := verifyResults(ctx, results, stats); err != nil {
		return stats, err
	}

	// Step 5: Save the transcript
	if cfg.OutputFile != "" {
		if err := saveTranscript(ctx, cfg.OutputFile, records); err != nil {
			log.Warn(ctx, "failed to save transcript", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "replay completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	status, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// submitRuns posts the transcript cfg.Runs times with at most cfg.Workers
// requests in flight. Runs rejected with 429 or 503 are retried.
func submitRuns(ctx context.Context, cfg *Config, client *HTTPClient, records []stream.Record) ([]runResult, error) {
	results := make([]runResult, cfg.Runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i := range cfg.Runs {
		g.Go(func() error {
			res, err := submitRun(gctx, cfg, client, records)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			if cfg.Verbose {
				logger.Get().Debug(gctx, "run complete", logger.Int("run", i),
					logger.String("runID", res.runID), logger.Int("retries", res.retries))
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func submitRun(ctx context.Context, cfg *Config, client *HTTPClient, records []stream.Record) (runResult, error) {
	var res runResult
	for attempt := 0; ; attempt++ {
		status, body, err := client.Pipeline(ctx, records)
		if err != nil {
			return res, fmt.Errorf("%w: %w", ErrRunFailed, err)
		}
		switch status {
		case http.StatusOK:
			doc, runID, err := canonical(body)
			if err != nil {
				return res, err
			}
			res.doc, res.runID = doc, runID
			return res, nil
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			if attempt >= cfg.Retries {
				return res, fmt.Errorf("%w: status %d after %d retries", ErrRunFailed, status, attempt)
			}
			res.retries++
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt+1)):
			}
		default:
			return res, fmt.Errorf("%w: status %d: %s", ErrRunFailed, status, body)
		}
	}
}

// verifyResults checks that every run matches the first one, that run ids
// are unique and that every table has rows.
func verifyResults(ctx context.Context, results []runResult, stats *Stats) error {
	if len(results) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(results))
	for i, r := range results {
		stats.Successful++
		stats.Retried += r.retries
		if _, dup := seen[r.runID]; dup || r.runID == "" {
			return fmt.Errorf("%w: run %d reused run id %q", ErrNotIdempotent, i, r.runID)
		}
		seen[r.runID] = struct{}{}
		if r.doc != results[0].doc {
			stats.Mismatched++
		}
	}
	if stats.Mismatched > 0 {
		return fmt.Errorf("%w: %d of %d runs", ErrNotIdempotent, stats.Mismatched, len(results))
	}

	counts, err := rowCounts(results[0].doc)
	stats.Rows = counts
	if err != nil {
		return err
	}
	logger.Get().Info(ctx, "all runs identical", logger.Int("runs", len(results)))
	return nil
}

// saveTranscript writes the generated records as a JSON array that the run
// command can read back.
func saveTranscript(ctx context.Context, filename string, records []stream.Record) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	logger.Get().Info(ctx, "transcript saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final replay statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, runsPerSecond float64
	if stats.Runs > 0 {
		successRate = float64(stats.Successful) / float64(stats.Runs) * percentageMultiplier
	}
	if stats.Duration > 0 {
		runsPerSecond = float64(stats.Successful) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("replayID", stats.ReplayID),
		logger.Int("messages", stats.Messages),
		logger.Int("runs", stats.Runs),
		logger.Int("successful", stats.Successful),
		logger.Int("retried", stats.Retried),
		logger.Any("rows", stats.Rows),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("runsPerSecond", runsPerSecond))
}
