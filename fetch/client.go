package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/poiesic/wordbook/core"
	"golang.org/x/net/html"
)

const (
	// DefaultTimeout bounds every request, including reading the body.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies as a desktop browser; some dictionary
	// sites serve a reduced page to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultMaxBodySize caps response bodies at 5 MiB.
	DefaultMaxBodySize = 5 << 20

	defaultMaxAttempts = 2
	defaultRetryDelay  = 500 * time.Millisecond
)

// Client performs GET requests on behalf of a lookup source.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("fetch: timeout must be positive, got %s", d)
		}
		c.httpClient.Timeout = d
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithMaxBodySize sets the largest body that will be read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("fetch: max body size must be positive, got %d", n)
		}
		c.maxBodySize = n
		return nil
	}
}

// WithRetry sets the attempt count and base backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *Client) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = maxAttempts
		c.retryDelay = baseDelay
		return nil
	}
}

// WithoutRedirects makes redirects visible to the caller instead of following them.
func WithoutRedirects() Option {
	return func(c *Client) error {
		c.httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		c.httpClient.Transport = rt
		return nil
	}
}

// New creates a Client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        *url.URL
}

// Location returns the resolved redirect target, or "" when the
// response is not a redirect.
func (r *Response) Location() string {
	if r.StatusCode < 300 || r.StatusCode >= 400 {
		return ""
	}
	loc := r.Header.Get("Location")
	if loc == "" {
		return ""
	}
	target, err := r.URL.Parse(loc)
	if err != nil {
		return loc
	}
	return target.String()
}

// Get fetches rawURL. 2xx and 3xx responses are returned; 404 wraps
// core.ErrNotFound and anything else wraps core.ErrSourceUnavailable.
// Network errors and 5xx responses are retried.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	var resp *Response
	err := RetryWithBackoff(ctx, func() error {
		r, err := c.do(ctx, rawURL)
		if err != nil {
			return err
		}
		if r.StatusCode >= 500 {
			c.logger.WarnContext(ctx, "upstream error, retrying", "url", rawURL, "status", r.StatusCode)
			return fmt.Errorf("%w: GET %s: status %d", core.ErrSourceUnavailable, rawURL, r.StatusCode)
		}
		resp = r
		return nil
	}, c.maxAttempts, c.retryDelay)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: GET %s: %w", core.ErrSourceUnavailable, rawURL, err)
		}
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: GET %s", core.ErrNotFound, rawURL)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: GET %s: status %d", core.ErrSourceUnavailable, rawURL, resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, Permanent(fmt.Errorf("%w: build request: %w", core.ErrSourceUnavailable, err))
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept-Language", "ja,en;q=0.8")

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Permanent(err)
		}
		return nil, fmt.Errorf("%w: GET %s: %w", core.ErrSourceUnavailable, rawURL, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", core.ErrSourceUnavailable, err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, Permanent(fmt.Errorf("%w: GET %s: %w", core.ErrSourceUnavailable, rawURL, ErrBodyTooLarge))
	}

	c.logger.DebugContext(ctx, "http response",
		"url", rawURL,
		"status", httpResp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start))

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		URL:        httpResp.Request.URL,
	}, nil
}

// GetJSON fetches rawURL and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: decode json: %w", core.ErrParseFailure, err)
	}
	return nil
}

// GetHTML fetches rawURL and parses the body as HTML. Redirect responses
// are returned with a nil document.
func (c *Client) GetHTML(ctx context.Context, rawURL string) (*html.Node, *Response, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	if resp.Location() != "" {
		return nil, resp, nil
	}
	doc, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, resp, fmt.Errorf("%w: parse html: %w", core.ErrParseFailure, err)
	}
	return doc, resp, nil
}
