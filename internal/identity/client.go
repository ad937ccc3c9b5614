package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"personadesk/internal/platform/config"
	"personadesk/pkg/platform/sentinel"
)

// Source is the read side of the upstream user API. The concrete client and
// the redis page cache both satisfy it.
type Source interface {
	List(ctx context.Context, page, limit int) (Page, error)
	GetByID(ctx context.Context, externalID string) (Record, error)
}

// lookupPageSize is the page size used when scanning for a single record.
// The upstream API has no single-record endpoint, so GetByID pages through
// the collection client-side.
const lookupPageSize = 200

// Client fetches user records from the token API. Listing is fail-open: a
// missing configuration or transport failure yields an empty, degraded page
// so the dashboard renders an empty state instead of crashing.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient builds a client from identity configuration. An unconfigured
// client is still usable; every list degrades.
func NewClient(cfg config.Identity, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (c *Client) configured() bool {
	return c.baseURL != "" && c.token != ""
}

// List returns one page of upstream records. It never returns an error:
// failures are logged and reported through Page.Degraded.
func (c *Client) List(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if !c.configured() {
		c.logger.WarnContext(ctx, "identity API configuration missing, returning empty page")
		return Page{Degraded: true}, nil
	}

	records, total, err := c.fetchPage(ctx, page, limit)
	if err != nil {
		c.logger.ErrorContext(ctx, "identity list failed",
			"page", page,
			"limit", limit,
			"error", err,
		)
		return Page{Degraded: true}, nil
	}
	return Page{Records: records, Total: total}, nil
}

// GetByID scans the collection for a single record. Unlike List it fails
// loud: the detail page must distinguish "record absent" from "source down".
func (c *Client) GetByID(ctx context.Context, externalID string) (Record, error) {
	if !c.configured() {
		return Record{}, fmt.Errorf("identity API not configured: %w", sentinel.ErrUnavailable)
	}

	for page := 1; ; page++ {
		records, total, err := c.fetchPage(ctx, page, lookupPageSize)
		if err != nil {
			return Record{}, fmt.Errorf("identity lookup %q: %w: %w", externalID, sentinel.ErrUnavailable, err)
		}
		for _, record := range records {
			if record.ExternalID == externalID {
				return record, nil
			}
		}
		if len(records) == 0 || page*lookupPageSize >= total {
			return Record{}, sentinel.ErrNotFound
		}
	}
}

// UserLog fetches a user's activity log. Secondary panels fail loud; the
// handler degrades them independently of the core record.
func (c *Client) UserLog(ctx context.Context, externalID string) ([]LogEntry, error) {
	var envelope struct {
		Result []LogEntry `json:"result"`
	}
	if err := c.get(ctx, "/token/user-log/"+url.PathEscape(externalID), nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch user log: %w", err)
	}
	return envelope.Result, nil
}

// Organization fetches the user's organization mapping as opaque JSON.
func (c *Client) Organization(ctx context.Context, externalID string) (json.RawMessage, error) {
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	query := url.Values{"userId": {externalID}}
	if err := c.get(ctx, "/token/organization/user", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch organization: %w", err)
	}
	return envelope.Result, nil
}

// Projects fetches the projects owned by the user as opaque JSON.
func (c *Client) Projects(ctx context.Context, externalID string) (json.RawMessage, error) {
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	query := url.Values{"ownerId": {externalID}}
	if err := c.get(ctx, "/token/projects", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	return envelope.Result, nil
}

func (c *Client) fetchPage(ctx context.Context, page, limit int) ([]Record, int, error) {
	var envelope struct {
		Result []Record `json:"result"`
		Meta   struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	if err := c.get(ctx, "/token/users", query, &envelope); err != nil {
		return nil, 0, err
	}
	return envelope.Result, envelope.Meta.Total, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if !c.configured() {
		return fmt.Errorf("identity API not configured: %w", sentinel.ErrUnavailable)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("identity API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("identity API status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode identity API response: %w", err)
	}
	return nil
}
