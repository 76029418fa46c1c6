// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex implements the record source contract against the
// OpenAlex REST API. Pagination is limited to the first page; callers bound
// their requests with per_page (max 200).
package openalex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/collab-finder/internal/httputil"
	"github.com/pdiddy/collab-finder/internal/logging"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

const (
	// BaseURL is the OpenAlex API root.
	BaseURL = "https://api.openalex.org"

	// DefaultRateLimit stays well inside the polite pool allowance.
	DefaultRateLimit = 10.0

	// MaxPerPage is the largest page OpenAlex serves.
	MaxPerPage = 200
)

// Client queries OpenAlex. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	email      string
	apiKey     string
	userAgent  string
	maxRetries int
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithEmail sets the mailto parameter for polite pool access.
func WithEmail(email string) Option {
	return func(c *Client) { c.email = email }
}

// WithAPIKey sets the api_key parameter sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit sets the sustained request rate; zero or less disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithMaxRetries bounds retries on 429/503.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithLogger sets the logger used for skipped records.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

// NewClient creates a new OpenAlex client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    BaseURL,
		userAgent:  "collab-finder/0.1",
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the source identifier.
func (c *Client) Name() string { return "openalex" }

// SearchConcepts searches concepts by name.
func (c *Client) SearchConcepts(ctx context.Context, q source.Query, limit int) ([]types.ConceptRecord, error) {
	if q.Text == "" {
		return []types.ConceptRecord{}, nil
	}
	params := url.Values{
		"search":   {q.Text},
		"per_page": {perPage(limit)},
	}
	var resp listResponse[oaConcept]
	if err := c.get(ctx, "/concepts", params, &resp); err != nil {
		return nil, err
	}
	out := make([]types.ConceptRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		rec, err := r.toRecord()
		if err != nil {
			c.skip(err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// SearchAuthors searches authors by name, or lists the most prolific authors
// of a concept.
func (c *Client) SearchAuthors(ctx context.Context, q source.Query, limit int) ([]types.AuthorRecord, error) {
	params, ok := listParams(q, limit)
	if !ok {
		return []types.AuthorRecord{}, nil
	}
	var resp listResponse[oaAuthor]
	if err := c.get(ctx, "/authors", params, &resp); err != nil {
		return nil, err
	}
	out := make([]types.AuthorRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		rec, err := r.toRecord()
		if err != nil {
			c.skip(err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// SearchInstitutions searches institutions by name, or lists the most
// prolific institutions of a concept.
func (c *Client) SearchInstitutions(ctx context.Context, q source.Query, limit int) ([]types.InstitutionRecord, error) {
	params, ok := listParams(q, limit)
	if !ok {
		return []types.InstitutionRecord{}, nil
	}
	var resp listResponse[oaInstitution]
	if err := c.get(ctx, "/institutions", params, &resp); err != nil {
		return nil, err
	}
	out := make([]types.InstitutionRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		rec, err := r.toRecord()
		if err != nil {
			c.skip(err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Concept fetches one concept.
func (c *Client) Concept(ctx context.Context, id string) (types.ConceptRecord, error) {
	var r oaConcept
	if err := c.get(ctx, "/concepts/"+ShortID(id), nil, &r); err != nil {
		return types.ConceptRecord{}, err
	}
	rec, err := r.toRecord()
	if err != nil {
		return types.ConceptRecord{}, source.Unavailable("concept "+id, err)
	}
	return rec, nil
}

// Author fetches one author summary.
func (c *Client) Author(ctx context.Context, id string) (types.AuthorRecord, error) {
	var r oaAuthor
	if err := c.get(ctx, "/authors/"+ShortID(id), nil, &r); err != nil {
		return types.AuthorRecord{}, err
	}
	rec, err := r.toRecord()
	if err != nil {
		return types.AuthorRecord{}, source.Unavailable("author "+id, err)
	}
	return rec, nil
}

// Institution fetches one institution.
func (c *Client) Institution(ctx context.Context, id string) (types.InstitutionRecord, error) {
	var r oaInstitution
	if err := c.get(ctx, "/institutions/"+ShortID(id), nil, &r); err != nil {
		return types.InstitutionRecord{}, err
	}
	rec, err := r.toRecord()
	if err != nil {
		return types.InstitutionRecord{}, source.Unavailable("institution "+id, err)
	}
	return rec, nil
}

// GroupedCounts counts works published inside window, grouped by concept or
// by author.
func (c *Client) GroupedCounts(ctx context.Context, kind source.Kind, window types.Window) ([]types.GroupCount, error) {
	var groupBy string
	switch kind {
	case source.KindConcept:
		groupBy = "concepts.id"
	case source.KindAuthor:
		groupBy = "authorships.author.id"
	default:
		return nil, fmt.Errorf("grouped counts by %s: %w", kind, source.ErrUnsupported)
	}

	params := url.Values{
		"filter": {"from_publication_date:" + window.From.Format(types.DateLayout) +
			",to_publication_date:" + window.To.Format(types.DateLayout)},
		"group_by": {groupBy},
	}
	var resp groupResponse
	if err := c.get(ctx, "/works", params, &resp); err != nil {
		return nil, err
	}

	out := make([]types.GroupCount, 0, len(resp.GroupBy))
	for _, g := range resp.GroupBy {
		if g.Key == "" || g.Key == "unknown" {
			continue
		}
		out = append(out, types.GroupCount{
			Key:         LongID(g.Key),
			DisplayName: g.KeyDisplayName,
			Count:       g.Count,
		})
	}
	return out, nil
}

// ListWorks lists works for an author or concept, newest first.
func (c *Client) ListWorks(ctx context.Context, filter source.WorksFilter, limit int) ([]types.WorkRecord, error) {
	var filters []string
	if filter.AuthorID != "" {
		filters = append(filters, "authorships.author.id:"+ShortID(filter.AuthorID))
	}
	if filter.ConceptID != "" {
		filters = append(filters, "concepts.id:"+ShortID(filter.ConceptID))
	}
	if len(filters) == 0 {
		return []types.WorkRecord{}, nil
	}

	params := url.Values{
		"filter":   {strings.Join(filters, ",")},
		"sort":     {"publication_date:desc"},
		"per_page": {perPage(limit)},
	}
	var resp listResponse[oaWork]
	if err := c.get(ctx, "/works", params, &resp); err != nil {
		return nil, err
	}
	out := make([]types.WorkRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		rec, err := r.toRecord()
		if err != nil {
			c.skip(err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// get performs a GET against path and decodes the JSON body into dst.
// Transport failures, retryable or server statuses, and undecodable bodies
// map to source.ErrUnavailable; 404 maps to source.ErrNotFound.
func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	if params == nil {
		params = url.Values{}
	}
	if c.email != "" {
		params.Set("mailto", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, c.limiter, req, c.maxRetries)
	if err != nil {
		return source.Unavailable("OpenAlex request "+path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("OpenAlex %s: %w", path, source.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return source.Unavailable("OpenAlex "+path, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return source.Unavailable("parsing OpenAlex response "+path, err)
	}
	return nil
}

func (c *Client) skip(err error) {
	c.log.Warn("skipping malformed record", zap.String("source", c.Name()), zap.Error(err))
}

// listParams builds search or concept-filter parameters. ok is false when
// the query is empty.
func listParams(q source.Query, limit int) (url.Values, bool) {
	params := url.Values{"per_page": {perPage(limit)}}
	switch {
	case q.ConceptID != "":
		params.Set("filter", "concepts.id:"+ShortID(q.ConceptID))
		params.Set("sort", "works_count:desc")
		if q.Text != "" {
			params.Set("search", q.Text)
		}
	case q.Text != "":
		params.Set("search", q.Text)
	default:
		return nil, false
	}
	return params, true
}

func perPage(limit int) string {
	if limit <= 0 {
		limit = 25
	}
	if limit > MaxPerPage {
		limit = MaxPerPage
	}
	return strconv.Itoa(limit)
}

// ShortID strips the https://openalex.org/ prefix from an entity id.
func ShortID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), source.IDPrefix)
}

// LongID adds the https://openalex.org/ prefix to a bare entity id.
func LongID(id string) string {
	return source.CanonicalID(id)
}
