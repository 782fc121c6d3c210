package classifier

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/okian/jobguard/internal/domain/model"
)

// KindLogistic identifies a binary logistic regression step.
const KindLogistic = "logistic_regression"

// logisticParams mirrors the "params" object of a logistic_regression step.
// coef and intercept accept both flat values and the one-row nesting that
// array exporters produce.
type logisticParams struct {
	Classes           []int      `json:"classes"`
	Coef              flexFloats `json:"coef"`
	Intercept         flexFloats `json:"intercept"`
	DecisionThreshold *float64   `json:"decision_threshold"`
}

// LogisticRegression scores rows with a linear decision function.
type LogisticRegression struct {
	labels    binaryLabels
	coef      []float64
	intercept float64
	threshold *float64
}

func newLogisticRegression(raw json.RawMessage) (*LogisticRegression, error) {
	var p logisticParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	labels, err := newBinaryLabels(p.Classes)
	if err != nil {
		return nil, err
	}
	if len(p.Coef) == 0 {
		return nil, fmt.Errorf("%w: logistic regression has no coefficients", ErrArtifactIncompatible)
	}
	for i, w := range p.Coef {
		if !isFinite(w) {
			return nil, fmt.Errorf("%w: coef[%d] is not finite", ErrArtifactIncompatible, i)
		}
	}
	var intercept float64
	switch len(p.Intercept) {
	case 0:
	case 1:
		intercept = p.Intercept[0]
	default:
		return nil, fmt.Errorf("%w: binary logistic regression needs one intercept, got %d",
			ErrArtifactIncompatible, len(p.Intercept))
	}
	if !isFinite(intercept) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrArtifactIncompatible)
	}
	if err := checkThreshold(p.DecisionThreshold); err != nil {
		return nil, err
	}

	return &LogisticRegression{
		labels:    labels,
		coef:      p.Coef,
		intercept: intercept,
		threshold: p.DecisionThreshold,
	}, nil
}

// Kind implements Classifier.
func (*LogisticRegression) Kind() string { return KindLogistic }

// NumFeatures implements Classifier.
func (c *LogisticRegression) NumFeatures() int { return len(c.coef) }

// Classify implements Classifier. The second class wins when the decision
// function is strictly positive, unless the artifact sets its own threshold.
func (c *LogisticRegression) Classify(rows []SparseVector) []model.PredictionResult {
	out := make([]model.PredictionResult, len(rows))
	for i, row := range rows {
		decision := row.Dot(c.coef) + c.intercept
		pSecond := sigmoid(decision)
		out[i] = c.labels.decide(1-pSecond, pSecond, decision > 0, c.threshold)
	}
	return out
}

// sigmoid is the numerically stable logistic function.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// flexFloats decodes either [x, y, ...], [[x, y, ...]] or a bare number.
type flexFloats []float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexFloats) UnmarshalJSON(b []byte) error {
	var flat []float64
	if err := json.Unmarshal(b, &flat); err == nil {
		*f = flat
		return nil
	}
	var nested [][]float64
	if err := json.Unmarshal(b, &nested); err == nil {
		if len(nested) != 1 {
			return fmt.Errorf("expected a single row, got %d", len(nested))
		}
		*f = nested[0]
		return nil
	}
	var scalar float64
	if err := json.Unmarshal(b, &scalar); err != nil {
		return fmt.Errorf("expected number, array or single-row matrix: %w", err)
	}
	*f = []float64{scalar}
	return nil
}
