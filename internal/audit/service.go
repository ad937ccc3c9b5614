package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service accepts audit events on a buffered inbox and persists them from a
// background worker, keeping the write path off the request latency. A full
// inbox drops the event rather than blocking a user's save.
type Service struct {
	store  Store
	inbox  chan Event
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		inbox:  make(chan Event, 64),
		logger: logger,
	}
}

// Record enqueues an event, stamping id and time when unset.
func (s *Service) Record(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	select {
	case s.inbox <- event:
	default:
		s.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action,
			"external_ref", event.ExternalRef,
		)
	}
}

// Run drains the inbox until ctx is cancelled, then flushes what is queued.
// Store failures are logged, not fatal: the audit trail is best-effort and
// must never take the service down.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case event := <-s.inbox:
			s.append(event)
		}
	}
}

func (s *Service) flush() {
	for {
		select {
		case event := <-s.inbox:
			s.append(event)
		default:
			return
		}
	}
}

func (s *Service) append(event Event) {
	// Detached context: the originating request is long gone.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Append(ctx, event); err != nil {
		s.logger.Error("audit append failed",
			"action", event.Action,
			"external_ref", event.ExternalRef,
			"error", err,
		)
	}
}
