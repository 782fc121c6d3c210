package service

import (
	"github.com/okian/jobguard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithModelPath sets the artifact loaded by Start.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithModelChecksum pins the artifact's SHA-256 digest.
func WithModelChecksum(sum string) Option {
	return func(s *Service) {
		s.modelChecksum = sum
	}
}

// WithPredictor serves an already built predictor instead of loading one.
func WithPredictor(p Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// WithWorkerCount sets the number of inference workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued inference tasks.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxBatchSize caps batch requests. Zero disables the cap.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxBatchSize = n
		}
	}
}
