// Package service provides the inference service that implements the
// dependencies required by the HTTP API.
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

	"github.com/okian/jobguard/internal/adapters/mq/queue"
	"github.com/okian/jobguard/internal/adapters/mq/worker"
	"github.com/okian/jobguard/internal/domain/classifier"
	"github.com/okian/jobguard/internal/domain/model"
	"github.com/okian/jobguard/internal/domain/types"
	"github.com/okian/jobguard/pkg/logger"
	"github.com/okian/jobguard/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultModelPath    = "models/fraud_job_model.json"
	defaultQueueSize    = 1024
	defaultMaxBatchSize = 10_000
	stopTimeout         = 30 * time.Second
)

// Predictor is the loaded classification pipeline.
type Predictor interface {
	worker.Predictor
	Info() types.ModelInfo
}

// Service loads the model once and serves predictions through a bounded
// queue and a fixed worker pool.
type Service struct {
	mu sync.RWMutex

	// Core components
	predictor Predictor
	queue     queue.Queue
	pool      *worker.Pool

	// Configuration
	modelPath     string
	modelChecksum string
	workerCount   int
	queueSize     int
	maxBatchSize  int

	// State
	status    string
	started   bool
	startedAt time.Time
	runCancel context.CancelFunc
	stopCh    chan struct{}

	// Counters for GetStats
	requests  atomic.Int64
	items     atomic.Int64
	flagged   atomic.Int64
	failures  atomic.Int64
	rejected  atomic.Int64
	loadTime  time.Duration
	modelInfo types.ModelInfo

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelPath:    defaultModelPath,
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		maxBatchSize: defaultMaxBatchSize,
		status:       types.StatusUninitialized,
		stopCh:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the model artifact and starts the workers. A load failure
// wraps ErrStartup and leaves the service Uninitialized. A stopped service
// cannot be started again.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.status == types.StatusStopped {
		return ErrStopped
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting inference service...", logger.String("model_path", s.modelPath))

	if s.predictor == nil {
		start := time.Now()
		var opts []classifier.Option
		if s.modelChecksum != "" {
			opts = append(opts, classifier.WithExpectedChecksum(s.modelChecksum))
		}
		p, err := classifier.Load(ctx, s.modelPath, opts...)
		if err != nil {
			metrics.UpdateModelLoaded(false)
			metrics.RecordErrorByComponent("service", "model_load")
			s.logger.Error(ctx, "failed to load model", logger.String("model_path", s.modelPath), logger.Error(err))
			return fmt.Errorf("%w: %w", ErrStartup, err)
		}
		s.predictor = p
		s.loadTime = time.Since(start)
		metrics.UpdateModelLoadDuration(float64(s.loadTime.Microseconds()) / 1000)
	}
	s.modelInfo = s.predictor.Info()

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	// Workers outlive the start context so a cancelled signal context lets
	// in-flight requests finish; Stop cancels them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.runCancel = cancel
	s.pool = worker.NewPool(s.workerCount, s.queue, s.predictor, worker.WithLogger(s.logger))
	s.pool.Start(runCtx)

	s.started = true
	s.startedAt = time.Now()
	s.status = types.StatusReady

	metrics.UpdateModelLoaded(true)
	metrics.UpdateModelInfo(s.modelInfo.Name, s.modelInfo.Version, s.modelInfo.Classifier)

	s.logger.Info(ctx, "inference service started",
		logger.String("model", s.modelInfo.Name),
		logger.String("version", s.modelInfo.Version),
		logger.String("classifier", s.modelInfo.Classifier),
		logger.String("checksum", s.modelInfo.Checksum),
		logger.Int("features", s.modelInfo.Features),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("loadTime", s.loadTime),
	)

	return nil
}

// Stop drains queued work and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping inference service...")
	s.status = types.StatusStopped

	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.runCancel()
	close(s.stopCh)

	s.started = false
	metrics.UpdateModelLoaded(false)
	s.logger.Info(ctx, "inference service stopped")
}

// PredictSingle classifies one posting.
func (s *Service) PredictSingle(ctx context.Context, job model.JobPosting) (model.PredictionResult, error) {
	results, err := s.infer(ctx, metrics.PathSingle, []string{job.CombinedText()})
	if err != nil {
		return model.PredictionResult{}, s.fail(ctx, metrics.PathSingle, ErrPredictionFailed, err)
	}
	if len(results) != 1 {
		return model.PredictionResult{}, s.fail(ctx, metrics.PathSingle, ErrPredictionFailed,
			fmt.Errorf("expected 1 result, got %d", len(results)))
	}
	return results[0], nil
}

// PredictBatch classifies postings in one pass. Results are in input order.
// Any failure fails the whole batch.
func (s *Service) PredictBatch(ctx context.Context, jobs []model.JobPosting) ([]model.PredictionResult, error) {
	if !s.ready() {
		return nil, s.fail(ctx, metrics.PathBatch, ErrBatchPredictionFailed, ErrNotReady)
	}
	if len(jobs) == 0 {
		return []model.PredictionResult{}, nil
	}
	if s.maxBatchSize > 0 && len(jobs) > s.maxBatchSize {
		return nil, s.fail(ctx, metrics.PathBatch, ErrBatchPredictionFailed,
			fmt.Errorf("%w: %d items exceeds the limit of %d", ErrBatchTooLarge, len(jobs), s.maxBatchSize))
	}

	metrics.RecordBatchSize(len(jobs))
	results, err := s.infer(ctx, metrics.PathBatch, model.CombinedTexts(jobs))
	if err != nil {
		return nil, s.fail(ctx, metrics.PathBatch, ErrBatchPredictionFailed, err)
	}
	if len(results) != len(jobs) {
		return nil, s.fail(ctx, metrics.PathBatch, ErrBatchPredictionFailed,
			fmt.Errorf("expected %d results, got %d", len(jobs), len(results)))
	}
	return results, nil
}

// infer submits texts as one task and waits for the reply or ctx.
func (s *Service) infer(ctx context.Context, path string, texts []string) ([]model.PredictionResult, error) {
	s.mu.RLock()
	q, stopCh, ready := s.queue, s.stopCh, s.status == types.StatusReady
	s.mu.RUnlock()
	if !ready {
		return nil, ErrNotReady
	}

	start := time.Now()
	s.requests.Add(1)
	task := model.NewInferenceTask(ctx, uuid.NewString(), texts)

	if err := q.Enqueue(ctx, task); err != nil {
		switch {
		case errors.Is(err, queue.ErrFull):
			s.rejected.Add(1)
			return nil, ErrOverloaded
		case errors.Is(err, queue.ErrClosed):
			return nil, ErrNotReady
		default:
			return nil, err
		}
	}

	var out model.InferenceOutcome
	select {
	case out = <-task.Reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-stopCh:
		// Stop drains the queue before closing stopCh, so a reply may be waiting.
		select {
		case out = <-task.Reply:
		default:
			return nil, ErrNotReady
		}
	}
	if out.Err != nil {
		return nil, out.Err
	}

	metrics.RecordInferenceLatency(path, float64(time.Since(start).Microseconds())/1000)
	for _, r := range out.Results {
		metrics.RecordPrediction(path, r.IsFraudulent(), r.FraudProbability)
		if r.IsFraudulent() {
			s.flagged.Add(1)
		}
	}
	s.items.Add(int64(len(out.Results)))

	s.logger.Debug(ctx, "prediction served",
		logger.String("path", path),
		logger.String("task_id", task.ID),
		logger.Int("items", len(texts)),
		logger.Duration("took", time.Since(start)),
	)
	return out.Results, nil
}

// fail wraps err in kind unless err already names a caller-facing condition.
func (s *Service) fail(ctx context.Context, path string, kind, err error) error {
	s.failures.Add(1)

	reason := "prediction_failed"
	switch {
	case errors.Is(err, ErrNotReady):
		reason = "not_ready"
	case errors.Is(err, ErrOverloaded):
		reason = "overloaded"
	case errors.Is(err, ErrBatchTooLarge):
		reason = "batch_too_large"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = "cancelled"
	}
	metrics.RecordPredictionError(path, reason)

	if reason == "prediction_failed" {
		s.log().Error(ctx, "prediction failed", logger.String("path", path), logger.Error(err))
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func (s *Service) ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == types.StatusReady
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

// Health reports whether a model is loaded and serving.
func (s *Service) Health(_ context.Context) types.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := types.Health{Status: s.status}
	if s.predictor != nil && s.status == types.StatusReady {
		h.ModelLoaded = true
		info := s.modelInfo
		h.Model = &info
	}
	return h
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"status":         s.status,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"maxBatchSize":   s.maxBatchSize,
		"requests":       s.requests.Load(),
		"itemsPredicted": s.items.Load(),
		"flagged":        s.flagged.Load(),
		"failures":       s.failures.Load(),
		"rejected":       s.rejected.Load(),
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["busyWorkers"] = s.pool.Busy()
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
		stats["modelLoadMs"] = float64(s.loadTime.Microseconds()) / 1000
		stats["model"] = s.modelInfo

		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
