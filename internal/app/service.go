// Package service runs the extraction pipeline on a worker pool and exposes
// the operations required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	taskqueue "github.com/okian/carelog/internal/adapters/mq/queue"
	workerpool "github.com/okian/carelog/internal/adapters/mq/worker"
	"github.com/okian/carelog/internal/domain/decision"
	"github.com/okian/carelog/internal/domain/effort"
	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
	"github.com/okian/carelog/internal/domain/pipeline"
	"github.com/okian/carelog/pkg/logger"
	"github.com/okian/carelog/pkg/metrics"
)

var (
	// ErrBackpressure is returned when the task queue cannot take a run.
	ErrBackpressure = errors.New("backpressure: task queue full")
	// ErrNotStarted is returned when Run is called before Start.
	ErrNotStarted = errors.New("service not started")
)

// Outcome is the finalized result of one run.
type Outcome struct {
	RunID string
	pipeline.Result
}

// Service owns the shared identity resolver, the task queue and the worker
// pool. Runs share nothing but the resolver memo, which is keyed by sender
// only and never by weight configuration.
type Service struct {
	mu sync.RWMutex

	// Core components
	resolver   *identity.Cached
	pipeline   *pipeline.Pipeline
	taskQueue  taskqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount   int
	queueSize     int
	cacheSize     int
	roleWeights   map[string]float64
	defaultWeight float64
	window        time.Duration
	maxRationale  int

	// State
	started    bool
	cancel     context.CancelFunc
	runs       atomic.Int64
	messages   atomic.Int64
	lastHits   atomic.Int64
	lastMisses atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the task queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithIdentityCacheSize bounds the sender resolution memo.
func WithIdentityCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRoleWeights sets the minutes-per-interaction table.
func WithRoleWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.roleWeights = weights
	}
}

// WithDefaultRoleWeight sets the weight for roles missing from the table.
func WithDefaultRoleWeight(weight float64) Option {
	return func(s *Service) {
		if weight >= 0 {
			s.defaultWeight = weight
		}
	}
}

// WithRationaleWindow sets how far back decision rationale is searched.
func WithRationaleWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithMaxRationale caps rationale snippets per decision.
func WithMaxRationale(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRationale = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     1024,
		cacheSize:     4096,
		defaultWeight: effort.DefaultWeight,
		window:        decision.DefaultWindow,
		maxRationale:  decision.DefaultMaxRationale,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.resolver = identity.NewCached(identity.NewRules(), identity.WithMaxSize(s.cacheSize))
	s.pipeline = pipeline.New(s.resolver,
		pipeline.WithWeights(s.roleWeights, s.defaultWeight),
		pipeline.WithRationaleWindow(s.window),
		pipeline.WithMaxRationale(s.maxRationale),
	)

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.taskQueue = taskqueue.NewInMemoryQueue(
		taskqueue.WithCapacity(s.queueSize),
		taskqueue.WithBufferSize(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.taskQueue)
	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool.Start(poolCtx)

	s.started = true
	s.logger.Info(ctx, "carelog service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("identityCacheSize", s.cacheSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown", logger.Error(err))
		// Busy workers get one more bounded wait before the context is canceled.
		s.workerPool.Stop()
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "carelog service stopped")
}

// Run executes every pipeline stage for msgs as a queued task and finalizes
// the result once all stages completed. overrides are merged over the
// configured role weights for this run only.
func (s *Service) Run(ctx context.Context, msgs []model.Message, overrides map[string]float64) (Outcome, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return Outcome{}, ErrNotStarted
	}
	p, q := s.pipeline, s.taskQueue
	s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	runID := uuid.NewString()
	s.logger.Debug(ctx, "pipeline run started",
		logger.String("run_id", runID),
		logger.Int("messages", len(msgs)),
	)

	var (
		res pipeline.Result
		wg  sync.WaitGroup
	)
	for _, stage := range p.Stages(overrides) {
		wg.Add(1)
		task := taskqueue.Task{
			RunID: runID,
			Name:  stage.Name,
			Run: func(context.Context) {
				defer wg.Done()
				stage.Run(msgs, &res)
			},
		}
		if !q.Enqueue(ctx, task) {
			wg.Done()
			// Stages already queued still write into res; wait them out.
			wg.Wait()
			metrics.RecordErrorByComponent("service", "backpressure")
			s.logger.Error(ctx, "pipeline run rejected",
				logger.String("run_id", runID),
				logger.String("stage", stage.Name),
				logger.Error(ErrBackpressure),
			)
			return Outcome{}, ErrBackpressure
		}
	}
	metrics.UpdateQueueSize(q.Len(ctx))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return Outcome{}, fmt.Errorf("run %s: %w", runID, ctx.Err())
	}

	pipeline.Finalize(msgs, &res)
	s.record(msgs, &res, time.Since(start))
	metrics.UpdateQueueSize(q.Len(ctx))

	s.logger.Debug(ctx, "pipeline run finished",
		logger.String("run_id", runID),
		logger.Int("events", len(res.Events)),
		logger.Int("decisions", len(res.Decisions)),
	)

	return Outcome{RunID: runID, Result: res}, nil
}

// Snapshot runs the pipeline over msgs and builds the day view for date.
func (s *Service) Snapshot(ctx context.Context, msgs []model.Message, overrides map[string]float64, date string) (pipeline.DaySnapshot, error) {
	out, err := s.Run(ctx, msgs, overrides)
	if err != nil {
		return pipeline.DaySnapshot{}, err
	}
	return s.pipeline.Snapshot(msgs, out.Result, date)
}

// record publishes run metrics.
func (s *Service) record(msgs []model.Message, res *pipeline.Result, took time.Duration) {
	s.runs.Add(1)
	s.messages.Add(int64(len(msgs)))

	metrics.RecordPipelineRun()
	metrics.RecordPipelineLatency(float64(took.Milliseconds()))
	metrics.RecordMessagesIngested(len(msgs))
	metrics.RecordUntimedMessages(res.Summary.Untimed)

	metrics.RecordRecordsExtracted(pipeline.StageEvents, len(res.Events))
	metrics.RecordRecordsExtracted(pipeline.StageLabs, len(res.Labs))
	metrics.RecordRecordsExtracted(pipeline.StageSleep, len(res.Sleep))
	metrics.RecordRecordsExtracted(pipeline.StageActivity, len(res.Activity))
	metrics.RecordRecordsExtracted("biomarkers", len(res.Biomarkers))
	metrics.RecordRecordsExtracted(pipeline.StageDecisions, len(res.Decisions))
	metrics.RecordRecordsExtracted(pipeline.StageEffort, len(res.Effort))

	stats := s.resolver.Stats()
	metrics.RecordIdentityCacheHits(advance(&s.lastHits, stats.Hits))
	metrics.RecordIdentityCacheMisses(advance(&s.lastMisses, stats.Misses))
	metrics.UpdateIdentityCacheSize(stats.Size)
}

// advance moves last forward to now and returns the increment.
func advance(last *atomic.Int64, now int64) int64 {
	for {
		prev := last.Load()
		if now <= prev {
			return 0
		}
		if last.CompareAndSwap(prev, now) {
			return now - prev
		}
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"runs":        s.runs.Load(),
		"messages":    s.messages.Load(),
		"roleWeights": s.Weights(nil),
	}

	if s.started {
		queueLen := s.taskQueue.Len(context.Background())
		cache := s.resolver.Stats()

		stats["queueLength"] = queueLen
		stats["identityCacheSize"] = cache.Size
		stats["identityCacheHits"] = cache.Hits
		stats["identityCacheMisses"] = cache.Misses

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}

	return stats
}

// Weights returns the effective weight table for the given overrides.
func (s *Service) Weights(overrides map[string]float64) map[string]float64 {
	return effort.NewWeights(s.roleWeights, s.defaultWeight).Merge(overrides).Table()
}
