// Package customer reconciles the two data sources behind the dashboard: the
// read-only upstream identity record and the locally-owned persona record.
package customer

import (
	"time"

	"github.com/google/uuid"

	"personadesk/internal/identity"
	"personadesk/internal/persona"
)

// PaymentStatus is derived at view-construction time and never stored.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// MergedCustomer is the unified view of one customer. It is built per request
// and never persisted; only the persona-owned subset is ever written back.
type MergedCustomer struct {
	// Identity-owned. ExternalID is always the upstream id, never the
	// persona row id.
	ExternalID    string        `json:"external_id"`
	FullName      string        `json:"full_name"`
	Email         string        `json:"email"`
	Image         string        `json:"image,omitempty"`
	Country       string        `json:"country,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	// Persona-owned enrichment. LocalID is the write-back key for the
	// persona store and is zero when no persona record exists.
	LocalID        uuid.UUID  `json:"persona_id,omitempty"`
	HasPersona     bool       `json:"has_persona"`
	JobTitle       string     `json:"job_title,omitempty"`
	Company        string     `json:"company,omitempty"`
	Industry       string     `json:"industry,omitempty"`
	LinkedIn       string     `json:"linkedin_profile,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Website        string     `json:"website,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	RawNotes       string     `json:"raw_notes,omitempty"`
	PersonaSummary string     `json:"persona_summary,omitempty"`
	PainPoints     []string   `json:"pain_points"`
	Goals          []string   `json:"goals"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	LastResearched *time.Time `json:"last_researched,omitempty"`
}

// Merge reconciles one identity record with its optional persona record.
// Pure function: no I/O, deterministic given its inputs.
//
// Field precedence: where both sources carry a value (country, image), the
// persona value wins when non-empty, so local edits are not overwritten by
// upstream data on every merge. Identity remains authoritative for identity:
// the merged ExternalID is always the upstream id.
func Merge(record identity.Record, enrichment *persona.Record) MergedCustomer {
	merged := MergedCustomer{
		ExternalID:    record.ExternalID,
		FullName:      record.FullName,
		Email:         record.Email,
		Image:         record.Image,
		Country:       record.Country,
		CreatedAt:     record.CreatedAt,
		PaymentStatus: derivePaymentStatus(record),
		PainPoints:    []string{},
		Goals:         []string{},
	}
	if enrichment == nil {
		return merged
	}

	merged.LocalID = enrichment.LocalID
	merged.HasPersona = true
	merged.JobTitle = enrichment.JobTitle
	merged.Company = enrichment.Company
	merged.Industry = enrichment.Industry
	merged.LinkedIn = enrichment.LinkedIn
	merged.Phone = enrichment.Phone
	merged.Website = enrichment.Website
	merged.Bio = enrichment.Bio
	merged.RawNotes = enrichment.RawNotes
	merged.PersonaSummary = enrichment.PersonaSummary
	if enrichment.Country != "" {
		merged.Country = enrichment.Country
	}
	if enrichment.Image != "" {
		merged.Image = enrichment.Image
	}
	if enrichment.PainPoints != nil {
		merged.PainPoints = append([]string{}, enrichment.PainPoints...)
	}
	if enrichment.Goals != nil {
		merged.Goals = append([]string{}, enrichment.Goals...)
	}
	if !enrichment.UpdatedAt.IsZero() {
		at := enrichment.UpdatedAt
		merged.UpdatedAt = &at
	}
	if enrichment.LastResearched != nil {
		at := *enrichment.LastResearched
		merged.LastResearched = &at
	}
	return merged
}

func derivePaymentStatus(record identity.Record) PaymentStatus {
	if record.Paid() {
		return PaymentStatusPaid
	}
	return PaymentStatusUnpaid
}
