package handler

import "personadesk/internal/customer"

// ListResponse is the listing envelope. Degraded tells the UI the empty state
// may be an upstream outage rather than an empty dataset.
type ListResponse struct {
	Customers  []customer.MergedCustomer `json:"customers"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	Total      int                       `json:"total"`
	TotalPages int                       `json:"total_pages"`
	Degraded   bool                      `json:"degraded"`
}

func fromListing(listing customer.Listing) ListResponse {
	return ListResponse{
		Customers:  listing.Customers,
		Page:       listing.Page,
		Limit:      listing.Limit,
		Total:      listing.Total,
		TotalPages: listing.TotalPages,
		Degraded:   listing.Degraded,
	}
}
