package probe

import "errors"

// Sentinel errors for probe runs.
var (
	// ErrUnhealthy means the service did not report ready.
	ErrUnhealthy = errors.New("service not ready")
	// ErrRequest means a prediction request failed.
	ErrRequest = errors.New("request failed")
	// ErrVerification means the service broke an invariant.
	ErrVerification = errors.New("verification failed")
)
