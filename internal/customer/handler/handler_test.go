package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personadesk/internal/customer"
	"personadesk/internal/persona"
	dErrors "personadesk/pkg/domain-errors"
	"personadesk/pkg/testutil"
)

type fakeService struct {
	listing     customer.Listing
	listErr     error
	loaded      customer.MergedCustomer
	loadErr     error
	saved       *persona.Record
	saveErr     error
	activity    customer.Activity
	activityErr error

	gotPage  int
	gotLimit int
	gotOpts  customer.ListOptions
	gotID    string
	gotDraft customer.PersonaDraft
}

func (f *fakeService) List(_ context.Context, page, limit int, opts customer.ListOptions) (customer.Listing, error) {
	f.gotPage, f.gotLimit, f.gotOpts = page, limit, opts
	return f.listing, f.listErr
}

func (f *fakeService) Load(_ context.Context, externalID string) (customer.MergedCustomer, error) {
	f.gotID = externalID
	return f.loaded, f.loadErr
}

func (f *fakeService) Save(_ context.Context, externalID string, draft customer.PersonaDraft) (*persona.Record, error) {
	f.gotID, f.gotDraft = externalID, draft
	return f.saved, f.saveErr
}

func (f *fakeService) LoadActivity(_ context.Context, externalID string) (customer.Activity, error) {
	f.gotID = externalID
	return f.activity, f.activityErr
}

func newRouter(service Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(service, logger).Register(r)
	return r
}

func TestHandleList(t *testing.T) {
	t.Run("defaults and envelope", func(t *testing.T) {
		service := &fakeService{listing: customer.Listing{
			Customers:  []customer.MergedCustomer{{ExternalID: "u1", FullName: "Ann Lee"}},
			Page:       1,
			Limit:      20,
			Total:      1,
			TotalPages: 1,
		}}
		router := newRouter(service)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/customers", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, service.gotPage)
		assert.Equal(t, 20, service.gotLimit)

		resp := testutil.UnmarshalResponse[ListResponse](t, rr)
		require.Len(t, resp.Customers, 1)
		assert.Equal(t, "u1", resp.Customers[0].ExternalID)
		assert.False(t, resp.Degraded)
	})

	t.Run("passes pagination and filters through", func(t *testing.T) {
		service := &fakeService{}
		router := newRouter(service)

		rr := testutil.DoRequest(router,
			testutil.NewJSONRequest(t, http.MethodGet, "/api/customers?page=2&limit=10&q=ann&status=paid", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, service.gotPage)
		assert.Equal(t, 10, service.gotLimit)
		assert.Equal(t, "ann", service.gotOpts.Query)
		assert.Equal(t, customer.PaymentStatusPaid, service.gotOpts.Status)
	})

	t.Run("rejects bad query parameters", func(t *testing.T) {
		router := newRouter(&fakeService{})

		for _, path := range []string{
			"/api/customers?page=0",
			"/api/customers?page=abc",
			"/api/customers?limit=-1",
			"/api/customers?status=trial",
		} {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, path, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code, path)
			testutil.AssertErrorCode(t, rr, "bad_request")
		}
	})
}

func TestHandleDetail(t *testing.T) {
	t.Run("returns the merged view", func(t *testing.T) {
		service := &fakeService{loaded: customer.MergedCustomer{ExternalID: "u1", FullName: "Ann Lee"}}
		router := newRouter(service)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/customers/u1", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "u1", service.gotID)

		resp := testutil.UnmarshalResponse[customer.MergedCustomer](t, rr)
		assert.Equal(t, "Ann Lee", resp.FullName)
	})

	t.Run("maps NotFound to 404", func(t *testing.T) {
		service := &fakeService{loadErr: dErrors.New(dErrors.CodeNotFound, "customer not found")}
		router := newRouter(service)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/customers/nope", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		testutil.AssertErrorCode(t, rr, "not_found")
	})

	t.Run("maps identity outage to 503", func(t *testing.T) {
		service := &fakeService{loadErr: dErrors.New(dErrors.CodeUnavailable, "identity source unavailable")}
		router := newRouter(service)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/customers/u1", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestHandleSavePersona(t *testing.T) {
	t.Run("decodes the form and uses the path id", func(t *testing.T) {
		service := &fakeService{saved: &persona.Record{ExternalRef: "u1", Country: "India"}}
		router := newRouter(service)

		body := map[string]any{
			"full_name":   "Ann Lee",
			"email":       "ann@x.com",
			"country":     "India",
			"pain_points": []string{"slow onboarding"},
			"api_user_id": "spoofed-id",
		}
		rr := testutil.DoRequest(router,
			testutil.NewJSONRequest(t, http.MethodPut, "/api/customers/u1/persona", body))
		require.Equal(t, http.StatusOK, rr.Code)

		assert.Equal(t, "u1", service.gotID)
		assert.Equal(t, "Ann Lee", service.gotDraft.FullName)
		assert.Equal(t, []string{"slow onboarding"}, service.gotDraft.PainPoints)

		resp := testutil.UnmarshalResponse[persona.Record](t, rr)
		assert.Equal(t, "u1", resp.ExternalRef)
	})

	t.Run("invalid body is a bad request", func(t *testing.T) {
		router := newRouter(&fakeService{})

		req := testutil.NewJSONRequest(t, http.MethodPut, "/api/customers/u1/persona", nil)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("store failure surfaces as 503", func(t *testing.T) {
		service := &fakeService{saveErr: dErrors.New(dErrors.CodeUnavailable, "persona store rejected the write")}
		router := newRouter(service)

		body := map[string]any{"full_name": "Ann Lee", "email": "ann@x.com"}
		rr := testutil.DoRequest(router,
			testutil.NewJSONRequest(t, http.MethodPut, "/api/customers/u1/persona", body))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		testutil.AssertErrorCode(t, rr, "unavailable")
	})

	t.Run("validation failure surfaces as 400", func(t *testing.T) {
		service := &fakeService{saveErr: dErrors.New(dErrors.CodeBadRequest, "full_name is required")}
		router := newRouter(service)

		body := map[string]any{"email": "ann@x.com"}
		rr := testutil.DoRequest(router,
			testutil.NewJSONRequest(t, http.MethodPut, "/api/customers/u1/persona", body))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleActivity(t *testing.T) {
	service := &fakeService{activity: customer.Activity{Device: "Mac OS X"}}
	router := newRouter(service)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/customers/u1/activity", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	resp := testutil.UnmarshalResponse[customer.Activity](t, rr)
	assert.Equal(t, "Mac OS X", resp.Device)
}
