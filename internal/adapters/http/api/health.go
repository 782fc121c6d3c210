package api

import (
	"net/http"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	provider HealthProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(provider HealthProvider) *HealthHandler {
	return &HealthHandler{provider: provider}
}

// HandleHealth handles GET /healthz requests. It answers 200 once a model is
// serving and 503 before startup completes or after shutdown begins.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "api.health", http.MethodGet, http.MethodHead)
		return
	}

	health := h.provider.Health(r.Context())
	status := http.StatusOK
	if !health.Ready() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}
