package classifier

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrArtifactMissing means the artifact file could not be read.
	ErrArtifactMissing = errors.New("model artifact missing")
	// ErrArtifactCorrupt means the artifact bytes are not a decodable document.
	ErrArtifactCorrupt = errors.New("model artifact corrupt")
	// ErrArtifactIncompatible means the document decoded but is not a
	// vectorizer + classifier pipeline this package can run.
	ErrArtifactIncompatible = errors.New("model artifact incompatible")
	// ErrInference is returned when scoring fails at request time.
	ErrInference = errors.New("inference failed")
)
