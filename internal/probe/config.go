package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	Samples int           // Number of postings to generate
	Workers int           // Concurrent single-prediction requests
	Timeout time.Duration // HTTP request timeout
	Seed    int64         // Seed for posting generation
	Verbose bool          // Log every verdict
}

// JobPosting is the request body for POST /predict.
type JobPosting struct {
	Title          string `json:"title"`
	CompanyProfile string `json:"company_profile"`
	Description    string `json:"description"`
	Requirements   string `json:"requirements"`
}

// Prediction is the response body for one posting.
type Prediction struct {
	FraudPrediction  int     `json:"fraud_prediction"`
	FraudProbability float64 `json:"fraud_probability"`
}

// Health is the response body for GET /healthz.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Model       *struct {
		Name       string `json:"name"`
		Version    string `json:"version"`
		Classifier string `json:"classifier"`
	} `json:"model,omitempty"`
}

// Stats holds probe statistics.
type Stats struct {
	Samples       int
	Flagged       int
	Retries       int64
	SingleLatency time.Duration
	BatchLatency  time.Duration
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
