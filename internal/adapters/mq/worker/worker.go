// Package worker runs inference tasks taken from the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/jobguard/internal/domain/model"
	"github.com/okian/jobguard/pkg/logger"
	"github.com/okian/jobguard/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Task is what workers read off the queue.
type Task = model.InferenceTask

// Predictor scores a batch of combined texts.
type Predictor interface {
	Predict(ctx context.Context, texts []string) ([]model.PredictionResult, error)
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Task
}

// Worker processes tasks and replies on each task's reply channel.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current task.
	Shutdown(ctx context.Context) error
}

// activity counts busy workers across a pool.
type activity struct {
	busy  atomic.Int64
	total int
}

func (a *activity) begin() {
	if a == nil {
		return
	}
	n := int(a.busy.Add(1))
	metrics.UpdateWorkerActiveCount(n)
	metrics.UpdateWorkerIdleCount(a.total - n)
}

func (a *activity) end() {
	if a == nil {
		return
	}
	n := int(a.busy.Add(-1))
	metrics.UpdateWorkerActiveCount(n)
	metrics.UpdateWorkerIdleCount(a.total - n)
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	predictor Predictor
	name      string
	activity  *activity

	// Shutdown control
	shutdown chan struct{}
	stopOnce atomic.Bool
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, predictor Predictor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		predictor: predictor,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop. It returns when ctx is canceled, Shutdown is
// called, or the queue channel is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			w.process(task)
		}
	}
}

// Shutdown signals the worker to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.signal()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) signal() {
	if w.stopOnce.CompareAndSwap(false, true) {
		close(w.shutdown)
	}
}

// process runs one task and always answers it.
func (w *InMemoryWorker) process(task Task) { //nolint:gocritic // hugeParam: Task is passed by value for channel semantics
	ctx := task.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	metrics.RecordQueueDequeue()
	metrics.RecordQueueWaitLatency(float64(time.Since(task.EnqueuedAt).Microseconds()) / 1000)

	// The caller already gave up; skip the CPU work.
	if err := ctx.Err(); err != nil {
		metrics.RecordWorkerTaskAbandoned()
		w.logger.Debug(ctx, "skipping abandoned task", logger.String("task_id", task.ID))
		reply(task, model.InferenceOutcome{Err: err})
		return
	}

	w.activity.begin()
	defer w.activity.end()

	start := time.Now()
	results, err := w.predict(ctx, task.Texts)
	metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "inference_error")
		w.logger.Error(ctx, "inference failed",
			logger.String("task_id", task.ID),
			logger.Int("items", len(task.Texts)),
			logger.Error(err),
		)
		reply(task, model.InferenceOutcome{Err: err})
		return
	}

	w.logger.Debug(ctx, "task processed",
		logger.String("task_id", task.ID),
		logger.Int("items", len(task.Texts)),
		logger.Duration("took", time.Since(start)),
	)
	reply(task, model.InferenceOutcome{Results: results})
}

// predict converts a predictor panic into an error so the worker survives.
func (w *InMemoryWorker) predict(ctx context.Context, texts []string) (results []model.PredictionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, fmt.Errorf("predictor panic: %v", r)
		}
	}()
	return w.predictor.Predict(ctx, texts)
}

// reply never blocks; the channel is buffered and read at most once.
func reply(task Task, out model.InferenceOutcome) { //nolint:gocritic // hugeParam: Task is passed by value for channel semantics
	select {
	case task.Reply <- out:
	default:
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	activity *activity

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount defaults to
// runtime.NumCPU().
func NewPool(workerCount int, queue Queue, predictor Predictor, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		activity: &activity{total: workerCount},
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{}, opts...)
		workerOpts = append(workerOpts,
			WithName("worker-"+strconv.Itoa(i)),
			withActivity(pool.activity),
		)
		pool.workers[i] = NewInMemoryWorker(queue, predictor, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Busy returns the number of workers currently running inference.
func (p *Pool) Busy() int {
	return int(p.activity.busy.Load())
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and lets workers drain it before returning.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			p.abandon(p.workers[i:])
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}

	p.logger.Info(ctx, "worker pool stopped")
	return nil
}

// abandon stops workers after their current task without draining the queue.
func (p *Pool) abandon(workers []*InMemoryWorker) {
	for _, w := range workers {
		w.signal()
	}
	for _, w := range workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop", logger.String("worker", w.name), logger.Error(err))
		}
		cancel()
	}
}
