package probe

import "time"

// Defaults for the probe command.
const (
	DefaultBaseURL = "http://localhost:8001"
	DefaultSamples = 100
	DefaultTimeout = 30 * time.Second
	DefaultSeed    = 1
)

// Backpressure retry policy for 429 responses.
const (
	maxAttempts  = 5
	retryBackoff = 50 * time.Millisecond
)

const statusReady = "ready"
