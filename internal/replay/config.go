package replay

import (
	"errors"
	"time"
)

var (
	// ErrUnhealthy is returned when /healthz does not answer 200.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrNotIdempotent is returned when two runs over the same transcript differ.
	ErrNotIdempotent = errors.New("pipeline runs differ")
	// ErrEmptyTable is returned when a table the transcript should fill is empty.
	ErrEmptyTable = errors.New("empty table")
	// ErrRunFailed is returned when a run keeps failing after retries.
	ErrRunFailed = errors.New("pipeline run failed")
)

// Config holds configuration for a replay.
type Config struct {
	BaseURL    string        // Base URL of the service
	Days       int           // Days of synthetic transcript
	Runs       int           // Pipeline runs over the same transcript
	Workers    int           // Concurrent requests
	Seed       uint64        // Transcript generator seed
	Timeout    time.Duration // HTTP request timeout
	Retries    int           // Retries per run on 429/503
	OutputFile string        // Transcript output file, empty to skip
	Verbose    bool          // Log every run
}

// Stats holds replay statistics.
type Stats struct {
	ReplayID   string
	Messages   int
	Runs       int
	Successful int
	Retried    int
	Mismatched int
	Rows       map[string]int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
