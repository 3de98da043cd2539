package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	serviceName   string
	version       string
	engineVersion string
}

// NewHealthHandler creates a health handler reporting the given versions.
func NewHealthHandler(serviceName, version, engineVersion string) *HealthHandler {
	return &HealthHandler{
		serviceName:   serviceName,
		version:       version,
		engineVersion: engineVersion,
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.Check)
	return r
}

// Check handles GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":         "healthy",
		"service":        h.serviceName,
		"version":        h.version,
		"engine_version": h.engineVersion,
	})
}
