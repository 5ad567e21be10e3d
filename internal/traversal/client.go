// Package traversal implements the paginated ads_archive client. One
// Search call yields a Cursor: a pull-based producer of record batches
// that follows the API's paging links, retrying transient failures per
// page with exponential backoff before surfacing a terminal error.
package traversal

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultBaseURL = "https://graph.facebook.com"
	defaultVersion = "v16.0"

	// defaultBatchSize is the page size requested when the caller gives
	// no override.
	defaultBatchSize = 250

	// defaultRetryLimit is the per-page retry budget when the caller
	// gives no override.
	defaultRetryLimit = 3
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom Graph API root.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithVersion sets the Graph API version segment.
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		c.version = version
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is an HTTP client for the ads_archive endpoint.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new archive client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		version:    defaultVersion,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request scopes one traversal: the credential, the field spec, a single
// search term and the shared filters. Zero-valued optionals are omitted
// from the query string.
type Request struct {
	AccessToken string
	FieldSpec   string
	SearchTerm  string
	Countries   []string

	PageIDs      string
	ActiveStatus string

	// AfterDate keeps only ads that started delivery on or after this
	// ISO date. The API has no server-side equivalent, so the cursor
	// filters client-side and stops early once a whole page predates it.
	AfterDate string

	// BatchSize overrides the page size (must be > 0 when set).
	BatchSize int

	// RetryLimit overrides the per-page retry budget (>= 0 when set;
	// -1 means "use default").
	RetryLimit int
}

// Search starts a traversal for the request. The returned cursor is
// single-use; no network I/O happens until its first Next call.
func (c *Client) Search(req Request) *Cursor {
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	retryLimit := req.RetryLimit
	if retryLimit < 0 {
		retryLimit = defaultRetryLimit
	}

	params := url.Values{}
	params.Set("access_token", req.AccessToken)
	params.Set("fields", req.FieldSpec)
	params.Set("search_terms", req.SearchTerm)
	params.Set("ad_reached_countries", strings.Join(req.Countries, ","))
	params.Set("limit", strconv.Itoa(batchSize))
	if req.PageIDs != "" {
		params.Set("search_page_ids", req.PageIDs)
	}
	if req.ActiveStatus != "" {
		params.Set("ad_active_status", req.ActiveStatus)
	}

	return &Cursor{
		client:     c,
		nextURL:    c.baseURL + "/" + c.version + "/ads_archive?" + params.Encode(),
		afterDate:  req.AfterDate,
		retryLimit: retryLimit,
	}
}
