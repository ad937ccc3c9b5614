package handler

import (
	"net/http"
	"strconv"
	"time"

	"personadesk/internal/customer"
)

// SavePersonaRequest mirrors the persona form. api_user_id is accepted for
// compatibility with existing clients but ignored: the external ref always
// comes from the URL.
type SavePersonaRequest struct {
	FullName       string     `json:"full_name"`
	Email          string     `json:"email"`
	JobTitle       string     `json:"job_title"`
	Company        string     `json:"company"`
	Industry       string     `json:"industry"`
	LinkedIn       string     `json:"linkedin_profile"`
	Phone          string     `json:"phone"`
	Website        string     `json:"website"`
	Bio            string     `json:"bio"`
	RawNotes       string     `json:"raw_notes"`
	PersonaSummary string     `json:"persona_summary"`
	Image          string     `json:"image"`
	Country        string     `json:"country"`
	PainPoints     []string   `json:"pain_points"`
	Goals          []string   `json:"goals"`
	LastResearched *time.Time `json:"last_researched"`
	APIUserID      string     `json:"api_user_id"`
}

// ToDraft converts the request into a service draft.
func (r SavePersonaRequest) ToDraft() customer.PersonaDraft {
	return customer.PersonaDraft{
		FullName:       r.FullName,
		Email:          r.Email,
		JobTitle:       r.JobTitle,
		Company:        r.Company,
		Industry:       r.Industry,
		LinkedIn:       r.LinkedIn,
		Phone:          r.Phone,
		Website:        r.Website,
		Bio:            r.Bio,
		RawNotes:       r.RawNotes,
		PersonaSummary: r.PersonaSummary,
		Image:          r.Image,
		Country:        r.Country,
		PainPoints:     r.PainPoints,
		Goals:          r.Goals,
		LastResearched: r.LastResearched,
	}
}

type listParams struct {
	page  int
	limit int
	opts  customer.ListOptions
}

func parseListParams(r *http.Request) (listParams, error) {
	params := listParams{page: 1, limit: 20}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, badRequest("page must be a positive integer")
		}
		params.page = page
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return params, badRequest("limit must be a positive integer")
		}
		params.limit = limit
	}

	params.opts.Query = r.URL.Query().Get("q")
	switch status := r.URL.Query().Get("status"); status {
	case "":
	case string(customer.PaymentStatusPaid):
		params.opts.Status = customer.PaymentStatusPaid
	case string(customer.PaymentStatusUnpaid):
		params.opts.Status = customer.PaymentStatusUnpaid
	default:
		return params, badRequest("status must be paid or unpaid")
	}

	return params, nil
}
