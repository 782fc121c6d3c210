// Package classifier runs a pre-trained text classification pipeline:
// a TF-IDF vectorizer followed by a binary classifier, both decoded from a
// single JSON artifact.
//
// A Pipeline is immutable once built and safe for concurrent use.
package classifier

import (
	"context"
	"fmt"

	"github.com/okian/jobguard/internal/domain/model"
	"github.com/okian/jobguard/internal/domain/types"
)

// probabilitySlack is how far outside [0,1] a probability may drift from
// floating point rounding before it is treated as a failure.
const probabilitySlack = 1e-9

// Classifier is the scoring stage of a pipeline. Implementations apply their
// own decision rule; callers never re-derive the label.
type Classifier interface {
	Kind() string
	NumFeatures() int
	Classify(rows []SparseVector) []model.PredictionResult
}

// Pipeline couples a vectorizer with a classifier.
type Pipeline struct {
	name       string
	version    string
	checksum   string
	vectorizer *TFIDFVectorizer
	classifier Classifier
}

// Info describes the loaded artifact.
func (p *Pipeline) Info() types.ModelInfo {
	return types.ModelInfo{
		Name:       p.name,
		Version:    p.version,
		Checksum:   p.checksum,
		Vectorizer: KindTFIDF,
		Classifier: p.classifier.Kind(),
		Features:   p.vectorizer.NumFeatures(),
	}
}

// Predict scores every text in one pass: all texts are vectorized, then all
// rows are classified. Result i belongs to texts[i]. Any failure fails the
// whole call.
func (p *Pipeline) Predict(ctx context.Context, texts []string) (results []model.PredictionResult, err error) {
	if len(texts) == 0 {
		return []model.PredictionResult{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("%w: %v", ErrInference, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	rows := p.vectorizer.Transform(texts)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	out := p.classifier.Classify(rows)

	if len(out) != len(texts) {
		return nil, fmt.Errorf("%w: classifier returned %d results for %d inputs", ErrInference, len(out), len(texts))
	}
	for i := range out {
		r, err := coerce(out[i])
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrInference, i, err)
		}
		out[i] = r
	}
	return out, nil
}

// coerce enforces label ∈ {0,1} and probability ∈ [0,1].
func coerce(r model.PredictionResult) (model.PredictionResult, error) {
	if r.FraudPrediction != model.LabelLegitimate && r.FraudPrediction != model.LabelFraudulent {
		return r, fmt.Errorf("label %d is not binary", r.FraudPrediction)
	}
	p := r.FraudProbability
	switch {
	case !isFinite(p):
		return r, fmt.Errorf("probability %v is not finite", p)
	case p < -probabilitySlack || p > 1+probabilitySlack:
		return r, fmt.Errorf("probability %v outside [0,1]", p)
	case p < 0:
		r.FraudProbability = 0
	case p > 1:
		r.FraudProbability = 1
	}
	return r, nil
}
