package universities

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/reactagent/pkg", "universities")

// DefaultBaseURL is the search endpoint of the directory
const DefaultBaseURL = "http://universities.hipolabs.com/search"

//go:generate mockgen -source=client.go -destination=../../mocks/mockuniversities/client_mock.gen.go  -package mockuniversities

// Doer performs HTTP requests, *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Searcher looks up institutions by country.
type Searcher interface {
	Search(ctx context.Context, country string) ([]*Institution, error)
}

// Client is the directory client.
// It keeps no state between calls and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient Doer
}

var _ Searcher = (*Client)(nil)

// Option configures the Client
type Option func(*Client)

// WithBaseURL overrides the search endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client Doer) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New returns a new Client
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the search endpoint
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search returns institutions in the country, in the order the directory returns them.
// The request is not retried and has no timeout other than the context's.
func (c *Client) Search(ctx context.Context, country string) ([]*Institution, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, errors.WithStack(ErrEmptyQuery)
	}

	started := time.Now()
	defer metricskey.PerfLookupRequest.MeasureSince(started, "search")

	u, err := url.Parse(c.baseURL)
	if err != nil {
		metricskey.StatsLookupRequestsFailed.IncrCounter(1, "transport")
		return nil, &TransportError{Err: errors.Wrap(err, "invalid base URL")}
	}
	q := u.Query()
	q.Set("country", country)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		metricskey.StatsLookupRequestsFailed.IncrCounter(1, "transport")
		return nil, &TransportError{Err: errors.WithStack(err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metricskey.StatsLookupRequestsFailed.IncrCounter(1, "transport")
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "request_failed",
			"country", country,
			"err", err.Error(),
		)
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metricskey.StatsLookupRequestsFailed.IncrCounter(1, "remote")
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "unexpected_status",
			"country", country,
			"code", resp.StatusCode,
		)
		// drain to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &RemoteError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var list []*Institution
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		metricskey.StatsLookupRequestsFailed.IncrCounter(1, "decode")
		return nil, &DecodeError{Err: err}
	}

	// skip null entries
	res := list[:0]
	for _, inst := range list {
		if inst != nil {
			res = append(res, inst)
		}
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "found",
		"country", country,
		"count", len(res),
	)
	return res, nil
}
