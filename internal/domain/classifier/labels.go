package classifier

import (
	"fmt"
	"math"

	"github.com/okian/jobguard/internal/domain/model"
)

// binaryLabels maps a classifier's class order onto the fraud labels.
// Probabilities arrive in class order: first for classes[0], second for classes[1].
type binaryLabels struct {
	classes  [2]int
	positive int // position of the fraudulent class
}

func newBinaryLabels(classes []int) (binaryLabels, error) {
	if len(classes) != 2 {
		return binaryLabels{}, fmt.Errorf("%w: expected 2 classes, got %d", ErrArtifactIncompatible, len(classes))
	}
	a, b := classes[0], classes[1]
	valid := func(c int) bool { return c == model.LabelLegitimate || c == model.LabelFraudulent }
	if !valid(a) || !valid(b) || a == b {
		return binaryLabels{}, fmt.Errorf("%w: classes must be {0,1}, got %v", ErrArtifactIncompatible, classes)
	}
	l := binaryLabels{classes: [2]int{a, b}}
	if b == model.LabelFraudulent {
		l.positive = 1
	}
	return l, nil
}

func (l binaryLabels) positiveProb(pFirst, pSecond float64) float64 {
	if l.positive == 0 {
		return pFirst
	}
	return pSecond
}

// decide applies the classifier's native rule (secondWins), or the artifact's
// own threshold on the fraud probability when one is set.
func (l binaryLabels) decide(pFirst, pSecond float64, secondWins bool, threshold *float64) model.PredictionResult {
	prob := l.positiveProb(pFirst, pSecond)
	label := l.classes[0]
	if secondWins {
		label = l.classes[1]
	}
	if threshold != nil {
		label = model.LabelLegitimate
		if prob >= *threshold {
			label = model.LabelFraudulent
		}
	}
	return model.PredictionResult{FraudPrediction: label, FraudProbability: prob}
}

func checkThreshold(t *float64) error {
	if t == nil {
		return nil
	}
	if !isFinite(*t) || *t < 0 || *t > 1 {
		return fmt.Errorf("%w: decision_threshold %v outside [0,1]", ErrArtifactIncompatible, *t)
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
