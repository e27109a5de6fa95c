package contentful

import (
	"bytes"
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

	"github.com/matzehuels/contentaudit/pkg/content"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/httputil"
	"github.com/matzehuels/contentaudit/pkg/observability"
)

const (
	// DefaultBaseURL is the Content Management API host.
	DefaultBaseURL = "https://api.contentful.com"

	// DefaultEnvironment is the environment every space starts with.
	DefaultEnvironment = "master"

	httpTimeout = 30 * time.Second

	versionHeader        = "X-Contentful-Version"
	rateLimitResetHeader = "X-Contentful-RateLimit-Reset"
	contentTypeHeader    = "application/vnd.contentful.management.v1+json"
)

var (
	// ErrNotFound is returned when a record doesn't exist in the environment.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when the token is missing, invalid or lacks access.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when the platform keeps answering 429 after retries.
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict is returned when the sent version no longer matches the record.
	ErrConflict = errors.New("version conflict")

	// ErrRejected is returned for any other 4xx: the platform refused the
	// request as sent, and retrying it unchanged will not help.
	ErrRejected = errors.New("request rejected")
)

// Config configures a [Client].
type Config struct {
	Token         string // management access token
	SpaceID       string
	EnvironmentID string // defaults to DefaultEnvironment
	BaseURL       string // defaults to DefaultBaseURL

	HTTPClient *http.Client  // defaults to a client with a 30s timeout
	Attempts   int           // retry attempts per request, see [httputil.DefaultPolicy]
	Backoff    time.Duration // initial retry delay, see [httputil.DefaultPolicy]
}

// Client talks to the Content Management API for one space and environment.
// It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	space   string
	env     string
	headers map[string]string
	retry   httputil.Policy
}

// NewClient validates cfg and creates a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "access token is required")
	}
	if err := apperrors.ValidateID("space", cfg.SpaceID); err != nil {
		return nil, err
	}
	if cfg.EnvironmentID == "" {
		cfg.EnvironmentID = DefaultEnvironment
	}
	if err := apperrors.ValidateID("environment", cfg.EnvironmentID); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if err := apperrors.ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: httpTimeout}
	}
	retry := httputil.DefaultPolicy
	if cfg.Attempts > 0 {
		retry.Attempts = cfg.Attempts
	}
	if cfg.Backoff > 0 {
		retry.Delay = cfg.Backoff
	}

	return &Client{
		http:    cfg.HTTPClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		space:   cfg.SpaceID,
		env:     cfg.EnvironmentID,
		headers: map[string]string{
			"Authorization": "Bearer " + cfg.Token,
			"Content-Type":  contentTypeHeader,
		},
		retry: retry,
	}, nil
}

// SpaceID returns the space the client is scoped to.
func (c *Client) SpaceID() string { return c.space }

// EnvironmentID returns the environment the client is scoped to.
func (c *Client) EnvironmentID() string { return c.env }

// request describes one API call. Version, when non-zero, is sent in the
// X-Contentful-Version header.
type request struct {
	method  string
	path    string
	query   url.Values
	version int
}

func (r request) isRead() bool { return r.method == http.MethodGet }

// do sends r with retries and decodes the JSON response into v (may be nil).
func (c *Client) do(ctx context.Context, r request, v any) error {
	p := c.retry
	p.OnRetry = func(attempt int, wait time.Duration, err error) {
		observability.HTTP().OnRetry(ctx, r.method, r.path, attempt, wait, err)
	}
	return p.Do(ctx, func() error { return c.send(ctx, r, v) })
}

func (c *Client) send(ctx context.Context, r request, v any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "create request")
	}
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}
	if r.version > 0 {
		req.Header.Set(versionHeader, strconv.Itoa(r.version))
	}

	hooks := observability.HTTP()
	host := req.URL.Host
	hooks.OnRequest(ctx, r.method, host, r.path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, r.method, host, r.path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wrapped := apperrors.Wrap(apperrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "%s %s", r.method, r.path)
		if r.isRead() {
			return &httputil.RetryableError{Err: wrapped}
		}
		return wrapped
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, r.method, host, r.path, resp.StatusCode, time.Since(start))

	if err := checkStatus(r, resp); err != nil {
		return err
	}
	if v == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode %s %s", r.method, r.path)
	}
	return nil
}

// apiError is the error body the platform sends with non-2xx responses.
type apiError struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

func (e apiError) detail(status int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "status %d", status)
	if e.Sys.ID != "" {
		b.WriteString(" " + e.Sys.ID)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.RequestID != "" {
		b.WriteString(" (request " + e.RequestID + ")")
	}
	return b.String()
}

func checkStatus(r request, resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var ae apiError
	_ = json.NewDecoder(bytes.NewReader(body)).Decode(&ae)
	detail := ae.detail(code)
	where := r.method + " " + r.path

	switch {
	case code == http.StatusUnauthorized:
		return apperrors.Wrap(apperrors.ErrCodeUnauthorized, ErrUnauthorized, "%s: %s", where, detail)
	case code == http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrCodeForbidden, ErrUnauthorized, "%s: %s", where, detail)
	case code == http.StatusNotFound:
		return apperrors.Wrap(apperrors.ErrCodeNotFound, ErrNotFound, "%s: %s", where, detail)
	case code == http.StatusConflict:
		return apperrors.Wrap(apperrors.ErrCodeConflict, ErrConflict, "%s: %s", where, detail)
	case code == http.StatusTooManyRequests:
		reset, _ := strconv.Atoi(resp.Header.Get(rateLimitResetHeader))
		cause := fmt.Errorf("%w: %w", ErrRateLimited, &apperrors.RateLimitedError{RetryAfter: reset})
		return &httputil.RetryableError{
			Err:   apperrors.Wrap(apperrors.ErrCodeRateLimited, cause, "%s: %s", where, detail),
			After: time.Duration(reset) * time.Second,
		}
	case code >= 500:
		err := apperrors.Wrap(apperrors.ErrCodeNetwork, ErrNetwork, "%s: %s", where, detail)
		if r.isRead() {
			return &httputil.RetryableError{Err: err}
		}
		return err
	default:
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, ErrRejected, "%s: %s", where, detail)
	}
}

// envPath joins path segments below the scoped environment, escaping each.
func (c *Client) envPath(parts ...string) string {
	var b strings.Builder
	b.WriteString("/spaces/" + url.PathEscape(c.space) + "/environments/" + url.PathEscape(c.env))
	for _, p := range parts {
		b.WriteString("/" + url.PathEscape(p))
	}
	return b.String()
}

// GetSpace fetches the space the client is scoped to.
func (c *Client) GetSpace(ctx context.Context) (*content.Space, error) {
	var sp content.Space
	if err := c.do(ctx, request{method: http.MethodGet, path: "/spaces/" + url.PathEscape(c.space)}, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}
