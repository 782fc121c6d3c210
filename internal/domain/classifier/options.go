package classifier

// Option applies a configuration option to Load and Parse.
type Option func(*loader)

type loader struct {
	expectedChecksum string
}

// WithExpectedChecksum pins the artifact to a SHA-256 hex digest. A mismatch
// fails the load with ErrArtifactCorrupt.
func WithExpectedChecksum(sum string) Option {
	return func(l *loader) {
		l.expectedChecksum = sum
	}
}
