package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nao1215/catchphish/internal/model"
)

// DetailedPath is the path of the lookup endpoint relative to the base URL.
const DetailedPath = "/api/url/detailed"

// Client defaults.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultUserAgent   = "catchphish/1.0 (+https://github.com/nao1215/catchphish)"
	DefaultMaxBodySize = 1 * 1024 * 1024

	// statusBodySnippet bounds how much of an error body ends up in StatusError.
	statusBodySnippet = 256
)

// RequestIDHeader carries the per-request id so client and server logs can
// be correlated.
const RequestIDHeader = "X-Request-ID"

// lookupRequest is the JSON body sent to the endpoint.
type lookupRequest struct {
	URL string `json:"url"`
}

// Client posts URLs to the lookup endpoint.
// A Client is safe for concurrent use.
type Client struct {
	// endpoint is the full URL of the lookup endpoint.
	endpoint string

	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// options collects Option values before the Client is built.
type options struct {
	timeout      time.Duration
	headers      map[string]string
	cookie       string
	proxyAddress string
	httpClient   *http.Client
	userAgent    string
	maxBodySize  int64
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithTimeout sets the overall timeout of a single lookup request.
// Zero disables the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithCookie adds a raw cookie string ("name=value; other=value") to every request.
func WithCookie(cookie string) Option {
	return func(o *options) {
		o.cookie = cookie
	}
}

// WithProxy routes requests through the SOCKS5 proxy at address ("host:port").
func WithProxy(address string) Option {
	return func(o *options) {
		o.proxyAddress = address
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// Timeout and proxy options are ignored when a client is supplied;
// headers and cookie are still injected.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithMaxBodySize limits how many bytes of a response are read.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Client for the service at baseURL (e.g. "http://localhost:8000").
// DetailedPath is appended unless baseURL already ends with it.
func New(baseURL string, opts ...Option) (*Client, error) {
	endpoint, err := resolveEndpoint(baseURL)
	if err != nil {
		return nil, err
	}

	o := options{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient, err = newHTTPClient(o.timeout, o.proxyAddress)
		if err != nil {
			return nil, err
		}
	} else {
		clone := *httpClient
		httpClient = &clone
	}

	if o.cookie != "" || len(o.headers) > 0 {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		httpClient.Transport = &headerInjectingTransport{
			base:    base,
			cookie:  o.cookie,
			headers: o.headers,
		}
	}

	return &Client{
		endpoint:    endpoint,
		httpClient:  httpClient,
		userAgent:   o.userAgent,
		maxBodySize: o.maxBodySize,
		logger:      o.logger,
	}, nil
}

// resolveEndpoint validates baseURL and returns the full endpoint URL.
func resolveEndpoint(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, baseURL)
	}

	u.RawQuery = ""
	u.Fragment = ""
	path := strings.TrimRight(u.Path, "/")
	if !strings.HasSuffix(path, DetailedPath) {
		path += DetailedPath
	}
	u.Path = path

	return u.String(), nil
}

// Endpoint returns the full URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Lookup posts rawURL to the endpoint and decodes the classification.
// rawURL is sent exactly as given. Every error wraps ErrLookupFailed.
func (c *Client) Lookup(ctx context.Context, rawURL string) (*model.LookupResult, error) {
	requestID := uuid.NewString()
	logger := c.logger.With("request_id", requestID)

	body, err := json.Marshal(lookupRequest{URL: rawURL})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %w", ErrLookupFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", ErrLookupFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)

	logger.Debug("sending lookup", "url", rawURL, "endpoint", c.endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrLookupFailed, ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: failed to read body: %w", ErrLookupFailed, ErrTransport, err)
	}
	if int64(len(data)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: %w (limit %d bytes)", ErrLookupFailed, ErrResponseTooLarge, c.maxBodySize)
	}

	logger.Debug("lookup response received",
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, &StatusError{
			Code: resp.StatusCode,
			Body: snippet(data),
		})
	}

	result, err := model.DecodeLookupResult(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	return result, nil
}

// snippet returns at most statusBodySnippet bytes of data as a single line.
// The cut never splits a UTF-8 sequence.
func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > statusBodySnippet {
		cut := statusBodySnippet
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return strings.Join(strings.Fields(s), " ")
}
