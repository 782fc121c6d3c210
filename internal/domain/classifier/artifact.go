package classifier

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// FormatV1 is the only artifact format this package reads.
const FormatV1 = "jobguard.pipeline/v1"

// artifact is the on-disk pipeline document.
type artifact struct {
	Format  string `json:"format"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Steps   []step `json:"steps"`
}

// step is one named pipeline stage; params are decoded per kind.
type step struct {
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params"`
}

// Load reads and validates the artifact at path. Every failure wraps one of
// ErrArtifactMissing, ErrArtifactCorrupt or ErrArtifactIncompatible.
func Load(ctx context.Context, path string, opts ...Option) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrArtifactMissing, err)
	}
	return Parse(ctx, data, opts...)
}

// Parse builds a Pipeline from artifact bytes.
func Parse(ctx context.Context, data []byte, opts ...Option) (*Pipeline, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])
	if l.expectedChecksum != "" && !strings.EqualFold(l.expectedChecksum, checksum) {
		return nil, fmt.Errorf("%w: checksum %s does not match expected %s",
			ErrArtifactCorrupt, checksum, l.expectedChecksum)
	}

	var doc artifact
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactCorrupt, err)
	}
	if doc.Format != FormatV1 {
		return nil, fmt.Errorf("%w: format %q, want %q", ErrArtifactIncompatible, doc.Format, FormatV1)
	}
	if len(doc.Steps) != 2 {
		return nil, fmt.Errorf("%w: expected vectorizer and classifier steps, got %d step(s)",
			ErrArtifactIncompatible, len(doc.Steps))
	}

	vecStep, clfStep := doc.Steps[0], doc.Steps[1]
	if vecStep.Kind != KindTFIDF {
		return nil, fmt.Errorf("%w: first step %q is %q, want %q",
			ErrArtifactIncompatible, vecStep.Name, vecStep.Kind, KindTFIDF)
	}
	vectorizer, err := newTFIDFVectorizer(vecStep.Params)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", vecStep.Name, err)
	}

	var clf Classifier
	switch clfStep.Kind {
	case KindLogistic:
		clf, err = newLogisticRegression(clfStep.Params)
	case KindForest:
		clf, err = newRandomForest(clfStep.Params)
	default:
		return nil, fmt.Errorf("%w: second step %q has unknown kind %q",
			ErrArtifactIncompatible, clfStep.Name, clfStep.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", clfStep.Name, err)
	}

	if clf.NumFeatures() != vectorizer.NumFeatures() {
		return nil, fmt.Errorf("%w: classifier expects %d features, vectorizer produces %d",
			ErrArtifactIncompatible, clf.NumFeatures(), vectorizer.NumFeatures())
	}

	return &Pipeline{
		name:       doc.Name,
		version:    doc.Version,
		checksum:   checksum,
		vectorizer: vectorizer,
		classifier: clf,
	}, nil
}

// decodeParams strictly decodes a step's params; fields this package does
// not implement make the artifact incompatible rather than silently ignored.
func decodeParams(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: missing params", ErrArtifactIncompatible)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: params: %w", ErrArtifactIncompatible, err)
	}
	return nil
}
