// Package persona owns the locally-stored enrichment record attached to an
// upstream user. The upstream record is read-only; everything here is ours
// to mutate.
package persona

import (
	"time"

	"github.com/google/uuid"
)

// Record is one row of persona research, keyed by the upstream user id.
// At most one record exists per ExternalRef. LocalID is the store's own key
// and is never used as the customer identifier.
type Record struct {
	LocalID        uuid.UUID  `json:"id"`
	ExternalRef    string     `json:"api_user_id"`
	JobTitle       string     `json:"job_title,omitempty"`
	Company        string     `json:"company,omitempty"`
	Industry       string     `json:"industry,omitempty"`
	LinkedIn       string     `json:"linkedin_profile,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Website        string     `json:"website,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	RawNotes       string     `json:"raw_notes,omitempty"`
	PersonaSummary string     `json:"persona_summary,omitempty"`
	Image          string     `json:"image,omitempty"`
	Country        string     `json:"country,omitempty"`
	PainPoints     []string   `json:"pain_points"`
	Goals          []string   `json:"goals"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastResearched *time.Time `json:"last_researched,omitempty"`
}
