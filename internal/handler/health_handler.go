package handler

import (
	"context"
	"net/http"
)

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status   string            `json:"status"`
	Storage  string            `json:"storage"`
	Services map[string]string `json:"services"`
}

// HealthHandler reports dependency health.
type HealthHandler struct {
	storage string
	checks  map[string]HealthCheck
}

// NewHealthHandler creates a health handler for the named storage driver.
func NewHealthHandler(storage string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{storage: storage, checks: checks}
}

// Health handles GET /health. Any failing check yields 503 "degraded".
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Storage:  h.storage,
		Services: make(map[string]string, len(h.checks)),
	}

	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Services[name] = "unhealthy: " + err.Error()
			continue
		}
		resp.Services[name] = "healthy"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
