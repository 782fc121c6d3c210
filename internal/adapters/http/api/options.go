package api

import (
	"github.com/okian/jobguard/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes caps request bodies. Zero disables the cap.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n >= 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithAllowedOrigins sets the CORS allow list. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}
