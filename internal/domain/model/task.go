package model

import (
	"context"
	"time"
)

// InferenceTask is one unit of work for the inference workers. A task holds
// every text of a single request so a batch is scored in one pass.
type InferenceTask struct {
	ID         string
	Ctx        context.Context //nolint:containedctx // request-scoped, like http.Request
	Texts      []string
	EnqueuedAt time.Time

	// Reply must be buffered (capacity 1) so a worker never blocks on a
	// caller that already gave up.
	Reply chan InferenceOutcome
}

// InferenceOutcome carries the worker's answer back to the caller.
type InferenceOutcome struct {
	Results []PredictionResult
	Err     error
}

// NewInferenceTask builds a task with a correctly buffered reply channel.
func NewInferenceTask(ctx context.Context, id string, texts []string) InferenceTask {
	return InferenceTask{
		ID:         id,
		Ctx:        ctx,
		Texts:      texts,
		EnqueuedAt: time.Now(),
		Reply:      make(chan InferenceOutcome, 1),
	}
}
