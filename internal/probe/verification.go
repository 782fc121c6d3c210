package probe

import (
	"bytes"
	"fmt"
)

// verifyResults checks the invariants that must hold for any deterministic
// binary classifier behind the API.
func verifyResults(singles, batch, reverse []Prediction) error {
	n := len(singles)
	if len(batch) != n || len(reverse) != n {
		return fmt.Errorf("%w: result counts differ (single %d, batch %d, reversed %d)",
			ErrVerification, n, len(batch), len(reverse))
	}

	for i := range singles {
		if batch[i] != singles[i] {
			return fmt.Errorf("%w: item %d: batch %+v differs from single %+v", ErrVerification, i, batch[i], singles[i])
		}
		if reverse[n-1-i] != batch[i] {
			return fmt.Errorf("%w: item %d: reversed batch is not the reversal (%+v vs %+v)",
				ErrVerification, i, reverse[n-1-i], batch[i])
		}
		if err := checkPrediction(batch[i]); err != nil {
			return fmt.Errorf("%w: item %d: %w", ErrVerification, i, err)
		}
	}

	return checkSeparation(batch)
}

func checkPrediction(p Prediction) error {
	if p.FraudPrediction != 0 && p.FraudPrediction != 1 {
		return fmt.Errorf("label %d is not 0 or 1", p.FraudPrediction)
	}
	if p.FraudProbability < 0 || p.FraudProbability > 1 {
		return fmt.Errorf("probability %v is outside [0, 1]", p.FraudProbability)
	}
	return nil
}

// checkSeparation requires every label-0 probability to be at or below every
// label-1 probability. The two may meet at the decision boundary, where a
// probability of exactly 0.5 can carry either label.
func checkSeparation(preds []Prediction) error {
	maxLegit, minFraud := -1.0, 2.0
	for _, p := range preds {
		if p.FraudPrediction == 1 {
			minFraud = min(minFraud, p.FraudProbability)
		} else {
			maxLegit = max(maxLegit, p.FraudProbability)
		}
	}
	if maxLegit > minFraud {
		return fmt.Errorf("%w: labels are not separated by probability (legitimate up to %v, fraudulent from %v)",
			ErrVerification, maxLegit, minFraud)
	}
	return nil
}

// verifyEmptyBatch requires the literal empty array for an empty batch.
func verifyEmptyBatch(body []byte) error {
	if !bytes.Equal(bytes.TrimSpace(body), []byte("[]")) {
		return fmt.Errorf("%w: empty batch returned %q, want []", ErrVerification, bytes.TrimSpace(body))
	}
	return nil
}
