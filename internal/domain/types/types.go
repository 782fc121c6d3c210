// Package types contains common types used across the application
package types

// Service states.
const (
	StatusUninitialized = "uninitialized"
	StatusReady         = "ready"
	StatusStopped       = "stopped"
)

// ModelInfo describes the loaded classification pipeline.
type ModelInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Checksum   string `json:"checksum"`
	Vectorizer string `json:"vectorizer"`
	Classifier string `json:"classifier"`
	Features   int    `json:"features"`
}

// Health is the read shape returned by GET /healthz.
type Health struct {
	Status      string     `json:"status"`
	ModelLoaded bool       `json:"model_loaded"`
	Model       *ModelInfo `json:"model,omitempty"`
}

// Ready reports whether the service can accept prediction traffic.
func (h Health) Ready() bool {
	return h.Status == StatusReady && h.ModelLoaded
}
