// Package audit keeps a trail of persona edits so research provenance
// survives the people who did the research.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one recorded mutation of a persona record.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Action      string         `json:"action"`
	ExternalRef string         `json:"external_ref"`
	At          time.Time      `json:"at"`
	Details     map[string]any `json:"details,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByExternalRef(ctx context.Context, externalRef string) ([]Event, error)
}

const (
	ActionPersonaSaved = "persona.saved"
)
