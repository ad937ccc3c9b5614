package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"personadesk/internal/customer"
	"personadesk/internal/persona"
	dErrors "personadesk/pkg/domain-errors"
	"personadesk/pkg/platform/httputil"
	"personadesk/pkg/requestcontext"
)

// Service defines the customer operations the transport layer needs.
type Service interface {
	List(ctx context.Context, page, limit int, opts customer.ListOptions) (customer.Listing, error)
	Load(ctx context.Context, externalID string) (customer.MergedCustomer, error)
	Save(ctx context.Context, externalID string, draft customer.PersonaDraft) (*persona.Record, error)
	LoadActivity(ctx context.Context, externalID string) (customer.Activity, error)
}

// Handler wires customer endpoints to the customer service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a customer handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts customer endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/customers", h.HandleList)
	r.Get("/api/customers/{id}", h.HandleDetail)
	r.Put("/api/customers/{id}/persona", h.HandleSavePersona)
	r.Get("/api/customers/{id}/activity", h.HandleActivity)
}

// HandleList handles GET /api/customers.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := parseListParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	listing, err := h.service.List(ctx, params.page, params.limit, params.opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if listing.Degraded {
		h.logger.WarnContext(ctx, "serving degraded customer listing",
			"request_id", requestcontext.RequestID(ctx),
			"page", params.page,
		)
	}
	httputil.WriteJSON(w, http.StatusOK, fromListing(listing))
}

// HandleDetail handles GET /api/customers/{id}.
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := chi.URLParam(r, "id")

	merged, err := h.service.Load(ctx, externalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, merged)
}

// HandleSavePersona handles PUT /api/customers/{id}/persona.
func (h *Handler) HandleSavePersona(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := chi.URLParam(r, "id")
	start := time.Now()

	req, ok := httputil.Decode[SavePersonaRequest](w, r)
	if !ok {
		return
	}

	stored, err := h.service.Save(ctx, externalID, req.ToDraft())
	if err != nil {
		h.logger.ErrorContext(ctx, "persona save rejected",
			"request_id", requestcontext.RequestID(ctx),
			"external_id", externalID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "persona saved",
		"request_id", requestcontext.RequestID(ctx),
		"external_id", externalID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, stored)
}

// HandleActivity handles GET /api/customers/{id}/activity.
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := chi.URLParam(r, "id")

	activity, err := h.service.LoadActivity(ctx, externalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, activity)
}

func badRequest(description string) error {
	return dErrors.New(dErrors.CodeBadRequest, description)
}
