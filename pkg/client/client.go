// Package client fetches lineage events from the lineage service.
//
// The service exposes three read endpoints under /api/lineage:
//
//	GET /api/lineage/datasets        all dataset names with recorded events
//	GET /api/lineage?dataset=<name>  events touching one dataset
//	GET /api/lineage/run/<runId>     events of one pipeline run
//
// [Client.Graph] fetches events for a [Query] and converts them with
// [events.Build]. Requests that fail with a network error, a 5xx status or a
// 429 are retried with exponential backoff; a 404 is reported as
// [ErrNotFound].
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/creditdesk/lineageflow/pkg/buildinfo"
	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/events"
	"github.com/creditdesk/lineageflow/pkg/httputil"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/observability"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the service answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and unexpected statuses.
	ErrNetwork = errors.New("network error")
)

// Client talks to the lineage service. It is safe for concurrent use.
type Client struct {
	http     *http.Client
	baseURL  string
	headers  map[string]string
	attempts int
	delay    time.Duration
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each HTTP request. It replaces the timeout of the
// current HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithHeaders sets headers sent with every request (for example an
// Authorization header).
func WithHeaders(h map[string]string) Option {
	return func(c *Client) { c.headers = h }
}

// WithRetry overrides the retry policy.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the service at baseURL
// (e.g. "http://gateway:8081").
func New(baseURL string, opts ...Option) (*Client, error) {
	if err := apperrors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		attempts: httputil.DefaultAttempts,
		delay:    httputil.DefaultDelay,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// Datasets lists the dataset names known to the service.
func (c *Client) Datasets(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.get(ctx, "/api/lineage/datasets", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ByDataset returns the events that read or wrote the named dataset.
func (c *Client) ByDataset(ctx context.Context, name string) ([]events.Event, error) {
	if err := apperrors.ValidateDatasetName(name); err != nil {
		return nil, err
	}
	var evs []events.Event
	if err := c.get(ctx, "/api/lineage?dataset="+url.QueryEscape(name), &evs); err != nil {
		return nil, err
	}
	return evs, nil
}

// ByRun returns the events recorded for one pipeline run.
func (c *Client) ByRun(ctx context.Context, runID string) ([]events.Event, error) {
	if err := apperrors.ValidateRunID(runID); err != nil {
		return nil, err
	}
	var evs []events.Event
	if err := c.get(ctx, "/api/lineage/run/"+url.PathEscape(runID), &evs); err != nil {
		return nil, err
	}
	return evs, nil
}

// Query selects the events to build a graph from. Exactly one of Dataset
// and RunID must be set.
type Query struct {
	Dataset string `json:"dataset,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// Validate checks that q names exactly one selector.
func (q Query) Validate() error {
	switch {
	case q.Dataset == "" && q.RunID == "":
		return apperrors.New(apperrors.ErrCodeInvalidInput, "either a dataset or a run id is required")
	case q.Dataset != "" && q.RunID != "":
		return apperrors.New(apperrors.ErrCodeInvalidInput, "dataset and run id are mutually exclusive")
	}
	return nil
}

func (q Query) String() string {
	if q.RunID != "" {
		return "run " + q.RunID
	}
	return "dataset " + q.Dataset
}

// Events fetches the events selected by q.
func (c *Client) Events(ctx context.Context, q Query) ([]events.Event, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.RunID != "" {
		return c.ByRun(ctx, q.RunID)
	}
	return c.ByDataset(ctx, q.Dataset)
}

// Graph fetches the events selected by q and builds their lineage graph.
func (c *Client) Graph(ctx context.Context, q Query) (lineage.Graph, error) {
	evs, err := c.Events(ctx, q)
	if err != nil {
		return lineage.Graph{}, err
	}
	return events.Build(evs), nil
}

// get performs a GET against path with retries and decodes the JSON body
// into v. Failures are returned as coded errors that still match the
// package sentinels.
func (c *Client) get(ctx context.Context, path string, v any) error {
	target := c.baseURL + path
	attempt := 0
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		attempt++
		err := c.fetch(ctx, target, v)
		if err != nil && httputil.IsRetryable(err) {
			c.logger.Debug("lineage request failed", "url", target, "attempt", attempt, "err", err)
		}
		return err
	})
	return classify(err, target)
}

func (c *Client) fetch(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, resp.Header.Get("Retry-After")); err != nil {
		return err
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return nil
}

func checkStatus(code int, retryAfter string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		secs, _ := strconv.Atoi(retryAfter)
		return &httputil.RetryableError{
			Err:   &apperrors.RateLimitedError{RetryAfter: secs},
			After: time.Duration(secs) * time.Second,
		}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// classify attaches an error code to a request failure.
func classify(err error, target string) error {
	var rl *apperrors.RateLimitedError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperrors.Wrap(apperrors.ErrCodeNotFound, err, "lineage service: %s", target)
	case errors.As(err, &rl):
		return apperrors.Wrap(apperrors.ErrCodeRateLimited, err, "lineage service: %s", target)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "lineage service: %s", target)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "lineage service: %s", target)
	}
}
