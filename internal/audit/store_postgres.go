package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the audit_events table.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id           UUID PRIMARY KEY,
    action       TEXT NOT NULL,
    external_ref TEXT NOT NULL,
    at           TIMESTAMPTZ NOT NULL,
    details      JSONB
);
CREATE INDEX IF NOT EXISTS audit_events_external_ref_idx ON audit_events (external_ref, at);`

// PostgresStore persists audit events in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var details []byte
	if event.Details != nil {
		raw, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = raw
	}

	_, err := s.pool.Exec(ctx, `
INSERT INTO audit_events (id, action, external_ref, at, details)
VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.Action, event.ExternalRef, event.At, details,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByExternalRef(ctx context.Context, externalRef string) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, action, external_ref, at, details
FROM audit_events
WHERE external_ref = $1
ORDER BY at`, externalRef)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event   Event
			details []byte
		)
		if err := rows.Scan(&event.ID, &event.Action, &event.ExternalRef, &event.At, &details); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
