package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	generator Generator
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(generator Generator) *HealthHandler {
	return &HealthHandler{generator: generator}
}

// Health reports process health and the configured generator. It does not
// call the remote model.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "healthy",
		"checks": map[string]string{"api": "ok"},
	}
	statusCode := http.StatusOK

	if h.generator == nil {
		status["status"] = "degraded"
		status["checks"].(map[string]string)["llm"] = "unconfigured"
		statusCode = http.StatusServiceUnavailable
	} else {
		status["checks"].(map[string]string)["llm"] = "configured"
		status["llm"] = h.generator.GetStats()
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
