package service

import "errors"

// Sentinel error kinds for the inference service.
var (
	// ErrStartup wraps any failure to load the model artifact.
	ErrStartup = errors.New("service startup failed")
	// ErrNotReady is returned while no model is serving.
	ErrNotReady = errors.New("service not ready")
	// ErrStopped is returned by Start once the service has been stopped.
	ErrStopped = errors.New("service stopped")
	// ErrOverloaded is returned when the inference queue is full.
	ErrOverloaded = errors.New("inference queue full")
	// ErrBatchTooLarge is returned when a batch exceeds the configured ceiling.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrPredictionFailed wraps any single-item inference failure.
	ErrPredictionFailed = errors.New("prediction failed")
	// ErrBatchPredictionFailed wraps any batch inference failure.
	ErrBatchPredictionFailed = errors.New("batch prediction failed")
)
