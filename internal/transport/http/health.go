package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"personadesk/pkg/platform/httputil"
)

// HealthChecker reports whether one backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler serves /healthz. Dependencies are optional: an unconfigured
// backend is reported as "disabled", not unhealthy.
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler builds a health handler. Nil checkers are recorded as
// disabled dependencies.
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Register mounts the health endpoint on the router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		switch {
		case check == nil:
			deps[name] = "disabled"
		case check.Health(ctx) != nil:
			deps[name] = "unhealthy"
			status = http.StatusServiceUnavailable
		default:
			deps[name] = "ok"
		}
	}

	httputil.WriteJSON(w, status, map[string]any{
		"status":       http.StatusText(status),
		"dependencies": deps,
	})
}
