// Package model contains domain models passed between layers.
package model

import "strings"

// fieldSeparator joins the posting fields into the classifier input.
const fieldSeparator = " "

// JobPosting is a job listing submitted for classification.
// Fields mirror the request schema for POST /predict.
type JobPosting struct {
	Title          string `json:"title"`
	CompanyProfile string `json:"company_profile"`
	Description    string `json:"description"`
	Requirements   string `json:"requirements"`
}

// CombinedText returns the single text the classifier consumes: the four
// fields joined by one space, in fixed order. Empty fields are kept so the
// separator count never changes.
func (j JobPosting) CombinedText() string {
	return strings.Join([]string{
		j.Title,
		j.CompanyProfile,
		j.Description,
		j.Requirements,
	}, fieldSeparator)
}

// CombinedTexts builds the classifier input for each posting, preserving order.
func CombinedTexts(jobs []JobPosting) []string {
	texts := make([]string, len(jobs))
	for i, j := range jobs {
		texts[i] = j.CombinedText()
	}
	return texts
}

// Prediction labels.
const (
	LabelLegitimate = 0
	LabelFraudulent = 1
)

// PredictionResult is the classifier verdict for one posting.
type PredictionResult struct {
	FraudPrediction  int     `json:"fraud_prediction"`  // 0 legitimate, 1 fraudulent
	FraudProbability float64 `json:"fraud_probability"` // probability of the fraudulent class
}

// IsFraudulent reports whether the classifier selected the positive class.
func (r PredictionResult) IsFraudulent() bool {
	return r.FraudPrediction == LabelFraudulent
}
