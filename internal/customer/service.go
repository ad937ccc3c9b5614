package customer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"personadesk/internal/audit"
	"personadesk/internal/customer/metrics"
	"personadesk/internal/identity"
	"personadesk/internal/persona"
	"personadesk/internal/persona/store"
	dErrors "personadesk/pkg/domain-errors"
	"personadesk/pkg/platform/sentinel"
)

// ActivitySource exposes the secondary upstream collections shown on the
// detail sheet. The concrete identity client implements it; the page cache
// does not, so activity always bypasses the cache.
type ActivitySource interface {
	UserLog(ctx context.Context, externalID string) ([]identity.LogEntry, error)
	Organization(ctx context.Context, externalID string) (json.RawMessage, error)
	Projects(ctx context.Context, externalID string) (json.RawMessage, error)
}

// Auditor records persona mutations. audit.Service satisfies it.
type Auditor interface {
	Record(ctx context.Context, event audit.Event)
}

// ListOptions refine a fetched page. Filtering is deliberately local to the
// page the upstream returned: it never triggers additional upstream requests,
// matching the dashboard's page-scoped search and status filter.
type ListOptions struct {
	Query  string
	Status PaymentStatus
}

// Listing is one page of merged customers.
type Listing struct {
	Customers  []MergedCustomer
	Page       int
	Limit      int
	Total      int
	TotalPages int
	Degraded   bool
}

// Activity bundles the secondary detail panels for one customer.
type Activity struct {
	Events       []identity.LogEntry `json:"events"`
	Device       string              `json:"device,omitempty"`
	Organization json.RawMessage     `json:"organization,omitempty"`
	Projects     json.RawMessage     `json:"projects,omitempty"`
}

// PersonaDraft is the editable subset submitted from the persona form.
// FullName and Email are required for validation but remain identity-owned
// and are never written to the persona store.
type PersonaDraft struct {
	FullName       string
	Email          string
	JobTitle       string
	Company        string
	Industry       string
	LinkedIn       string
	Phone          string
	Website        string
	Bio            string
	RawNotes       string
	PersonaSummary string
	Image          string
	Country        string
	PainPoints     []string
	Goals          []string
	LastResearched *time.Time
}

// Service drives the merged listing, the detail view, and persona saves.
// Collaborators are injected; the service owns no connections itself.
type Service struct {
	source   identity.Source
	activity ActivitySource
	personas store.Store
	auditor  Auditor
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(
	source identity.Source,
	activity ActivitySource,
	personas store.Store,
	auditor Auditor,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		source:   source,
		activity: activity,
		personas: personas,
		auditor:  auditor,
		logger:   logger,
		metrics:  m,
	}
}

// List returns one merged, optionally filtered page. Pagination is delegated
// entirely to the identity source; the persona store is only consulted for
// the external ids on the fetched page. A persona store failure degrades the
// page to identity-only views: the read path renders, the failure is logged.
func (s *Service) List(ctx context.Context, page, limit int, opts ListOptions) (Listing, error) {
	start := time.Now()
	s.metrics.IncrementListRequests()
	defer func() { s.metrics.ObserveListLatency(time.Since(start)) }()

	if page < 1 {
		return Listing{}, dErrors.New(dErrors.CodeBadRequest, "page must be >= 1")
	}
	if limit < 1 {
		return Listing{}, dErrors.New(dErrors.CodeBadRequest, "limit must be > 0")
	}

	identityPage, err := s.source.List(ctx, page, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "identity list failed", "page", page, "error", err)
		identityPage = identity.Page{Degraded: true}
	}
	if identityPage.Degraded {
		s.metrics.IncrementIdentityDegradations()
	}

	enrichments := s.fetchEnrichments(ctx, identityPage.Records)

	customers := make([]MergedCustomer, 0, len(identityPage.Records))
	for _, record := range identityPage.Records {
		merged := Merge(record, enrichments[record.ExternalID])
		if matches(merged, opts) {
			customers = append(customers, merged)
		}
	}

	return Listing{
		Customers:  customers,
		Page:       page,
		Limit:      limit,
		Total:      identityPage.Total,
		TotalPages: totalPages(identityPage.Total, limit),
		Degraded:   identityPage.Degraded,
	}, nil
}

// Load returns the merged view for one customer. The two fetches are
// independent reads and run concurrently. Unlike List, a persona store
// failure here is fatal: rendering an empty edit form over existing research
// invites the user to overwrite it.
func (s *Service) Load(ctx context.Context, externalID string) (MergedCustomer, error) {
	var (
		record     identity.Record
		enrichment *persona.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.source.GetByID(gctx, externalID)
		return err
	})
	g.Go(func() error {
		found, err := s.personas.FindByExternalRef(gctx, externalID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		enrichment = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return MergedCustomer{}, s.translate(ctx, externalID, err)
	}
	return Merge(record, enrichment), nil
}

// Save validates the draft and upserts its enrichment fields. The external
// ref is set from the URL id unconditionally: identity linkage is
// non-negotiable, whatever the submitted form carried.
func (s *Service) Save(ctx context.Context, externalID string, draft PersonaDraft) (*persona.Record, error) {
	if strings.TrimSpace(draft.FullName) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "full_name is required")
	}
	if strings.TrimSpace(draft.Email) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email is required")
	}

	record := &persona.Record{
		ExternalRef:    externalID,
		JobTitle:       draft.JobTitle,
		Company:        draft.Company,
		Industry:       draft.Industry,
		LinkedIn:       draft.LinkedIn,
		Phone:          draft.Phone,
		Website:        draft.Website,
		Bio:            draft.Bio,
		RawNotes:       draft.RawNotes,
		PersonaSummary: draft.PersonaSummary,
		Image:          draft.Image,
		Country:        draft.Country,
		PainPoints:     draft.PainPoints,
		Goals:          draft.Goals,
		LastResearched: draft.LastResearched,
	}

	stored, err := s.personas.Upsert(ctx, record)
	if err != nil {
		s.metrics.IncrementPersonaSaveFailures()
		s.logger.ErrorContext(ctx, "persona save failed", "external_ref", externalID, "error", err)
		return nil, dErrors.New(dErrors.CodeUnavailable, "persona store rejected the write")
	}

	s.metrics.IncrementPersonaSaves()
	if s.auditor != nil {
		s.auditor.Record(ctx, audit.Event{
			Action:      audit.ActionPersonaSaved,
			ExternalRef: externalID,
			Details: map[string]any{
				"pain_points": len(stored.PainPoints),
				"goals":       len(stored.Goals),
			},
		})
	}
	return stored, nil
}

// LoadActivity fetches the detail sheet's secondary panels. The user log is
// required; organization and projects degrade independently to null.
func (s *Service) LoadActivity(ctx context.Context, externalID string) (Activity, error) {
	entries, err := s.activity.UserLog(ctx, externalID)
	if err != nil {
		return Activity{}, s.translate(ctx, externalID, err)
	}

	result := Activity{
		Events: entries,
		Device: deviceLabel(entries),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		org, err := s.activity.Organization(gctx, externalID)
		if err != nil {
			s.logger.WarnContext(ctx, "organization fetch failed", "external_id", externalID, "error", err)
			return nil
		}
		result.Organization = org
		return nil
	})
	g.Go(func() error {
		projects, err := s.activity.Projects(gctx, externalID)
		if err != nil {
			s.logger.WarnContext(ctx, "projects fetch failed", "external_id", externalID, "error", err)
			return nil
		}
		result.Projects = projects
		return nil
	})
	_ = g.Wait()

	return result, nil
}

// fetchEnrichments batch-loads persona records for a page; on failure the
// page is served identity-only.
func (s *Service) fetchEnrichments(ctx context.Context, records []identity.Record) map[string]*persona.Record {
	if len(records) == 0 {
		return nil
	}
	refs := make([]string, 0, len(records))
	for _, record := range records {
		refs = append(refs, record.ExternalID)
	}
	enrichments, err := s.personas.FindByExternalRefs(ctx, refs)
	if err != nil {
		s.logger.ErrorContext(ctx, "persona batch fetch failed, serving identity-only page", "error", err)
		return nil
	}
	return enrichments
}

func (s *Service) translate(ctx context.Context, externalID string, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "customer not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.New(dErrors.CodeUnavailable, "identity source unavailable")
	default:
		s.logger.ErrorContext(ctx, "customer load failed", "external_id", externalID, "error", err)
		return dErrors.New(dErrors.CodeInternal, "load failed")
	}
}

func matches(merged MergedCustomer, opts ListOptions) bool {
	if opts.Status != "" && merged.PaymentStatus != opts.Status {
		return false
	}
	if opts.Query != "" {
		query := strings.ToLower(opts.Query)
		if !strings.Contains(strings.ToLower(merged.FullName), query) &&
			!strings.Contains(strings.ToLower(merged.Email), query) {
			return false
		}
	}
	return true
}

func totalPages(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
