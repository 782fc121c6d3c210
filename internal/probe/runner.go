package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/jobguard/pkg/logger"
)

// Run executes the complete probe against a running service.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Named("probe")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting jobguard probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("samples", config.Samples),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Int64("seed", config.Seed),
	)

	client := NewHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, log); err != nil {
		return stats, err
	}

	// Step 2: Generate postings
	jobs := GeneratePostings(config.Samples, config.Seed)
	stats.Samples = len(jobs)

	// Step 3: Submit postings one at a time, concurrently
	start := time.Now()
	singles, err := predictEach(ctx, client, jobs, config.Workers)
	if err != nil {
		return stats, fmt.Errorf("single predictions: %w", err)
	}
	stats.SingleLatency = time.Since(start)

	// Step 4: Submit all postings as a batch, forward then reversed
	start = time.Now()
	batch, _, err := client.PredictBatch(ctx, jobs)
	if err != nil {
		return stats, fmt.Errorf("batch prediction: %w", err)
	}
	stats.BatchLatency = time.Since(start)

	reverse, _, err := client.PredictBatch(ctx, reversed(jobs))
	if err != nil {
		return stats, fmt.Errorf("reversed batch prediction: %w", err)
	}

	// Step 5: Verify results
	if err := verifyResults(singles, batch, reverse); err != nil {
		return stats, err
	}
	_, body, err := client.PredictBatch(ctx, []JobPosting{})
	if err != nil {
		return stats, fmt.Errorf("empty batch: %w", err)
	}
	if err := verifyEmptyBatch(body); err != nil {
		return stats, err
	}

	for i, p := range batch {
		if p.FraudPrediction == 1 {
			stats.Flagged++
		}
		if config.Verbose {
			log.Debug(ctx, "verdict",
				logger.Int("item", i),
				logger.String("title", jobs[i].Title),
				logger.Int("label", p.FraudPrediction),
				logger.Float64("probability", p.FraudProbability),
			)
		}
	}
	if len(batch) > 0 {
		log.Info(ctx, "reference scam posting",
			logger.Int("label", batch[0].FraudPrediction),
			logger.Float64("probability", batch[0].FraudProbability),
		)
	}

	// Final statistics
	stats.Retries = client.Retries()
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is serving a model.
func checkServiceHealth(ctx context.Context, client *HTTPClient, log logger.Logger) error {
	log.Info(ctx, "checking service health")

	h, status, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK || h.Status != statusReady || !h.ModelLoaded {
		return fmt.Errorf("%w: status %d, state %q", ErrUnhealthy, status, h.Status)
	}

	fields := []logger.Field{logger.String("status", h.Status)}
	if h.Model != nil {
		fields = append(fields,
			logger.String("model", h.Model.Name),
			logger.String("version", h.Model.Version),
			logger.String("classifier", h.Model.Classifier),
		)
	}
	log.Info(ctx, "service is healthy", fields...)
	return nil
}

// predictEach submits every posting individually with at most workers
// requests in flight. The first failure cancels the rest.
func predictEach(ctx context.Context, client *HTTPClient, jobs []JobPosting, workers int) ([]Prediction, error) {
	out := make([]Prediction, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			p, err := client.Predict(gctx, job)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var flaggedRate float64
	if stats.Samples > 0 {
		flaggedRate = float64(stats.Flagged) / float64(stats.Samples)
	}

	log.Info(ctx, "final statistics",
		logger.Int("samples", stats.Samples),
		logger.Int("flagged", stats.Flagged),
		logger.Float64("flaggedRate", flaggedRate),
		logger.Int64("retries", stats.Retries),
		logger.Duration("singleLatency", stats.SingleLatency),
		logger.Duration("batchLatency", stats.BatchLatency),
		logger.Duration("duration", stats.Duration),
	)
}
