// Package httptransport assembles the HTTP surface: routing, middleware, and
// the operational endpoints. Business handlers register themselves; this
// package stays free of domain logic.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registrar is anything that mounts routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the service router with the standard middleware stack and
// operational endpoints, then mounts every registrar.
func NewRouter(logger *slog.Logger, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	for _, registrar := range registrars {
		registrar.Register(r)
	}
	return r
}
