package identity

import (
	"encoding/json"
	"time"
)

// Record is a user as the upstream token API reports it. The upstream owns
// these fields; this system never writes them back.
type Record struct {
	ExternalID string            `json:"_id"`
	FullName   string            `json:"full_name"`
	Email      string            `json:"email"`
	Image      string            `json:"image"`
	Country    string            `json:"country"`
	CreatedAt  time.Time         `json:"createdAt"`
	Orders     []json.RawMessage `json:"orders,omitempty"`
}

// Paid reports whether the record has at least one order. Order contents are
// opaque; presence is the only signal the dashboard uses.
func (r Record) Paid() bool {
	return len(r.Orders) > 0
}

// Page is one page of upstream records. Degraded distinguishes "fetch failed
// or unconfigured" from "genuinely no data" while still rendering an empty
// state in both cases.
type Page struct {
	Records  []Record `json:"records"`
	Total    int      `json:"total"`
	Degraded bool     `json:"degraded"`
}

// LogEntry is one row of a user's activity log.
type LogEntry struct {
	UserID    string         `json:"userId"`
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
