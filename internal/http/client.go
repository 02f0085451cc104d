// Package http is the transport shared by every repository request: pooled
// connections, bounded timeouts, optional proxy routing and retries.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrEmptyURL = errors.New("request URL is empty")
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request is a single GET against an absolute URL.
type Request struct {
	Method  string
	URL     string
	Query   url.Values
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	StatusText string
	Headers    http.Header
	Body       []byte
}

// StatusError is returned alongside the Response for any non-2xx status.
type StatusError struct {
	StatusCode int
	StatusText string
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.StatusText)
}

// Client issues requests through a retryablehttp client.
type Client struct {
	retryClient   *retryablehttp.Client
	transport     *http.Transport
	ownsTransport bool
	proxy         *url.URL
	base          *http.Client
	logger        Logger
	debug         bool
	userAgent     string
	retryMax      int
	retryWaitMin  time.Duration
	retryWaitMax  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig sets retry limits.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithProxy routes every request through proxy. The client then owns a
// dedicated transport instead of the shared one.
func WithProxy(proxy *url.URL) Option {
	return func(c *Client) {
		c.proxy = proxy
	}
}

// WithHTTPClient uses base as the underlying client. Its transport and
// timeout are left untouched.
func WithHTTPClient(base *http.Client) Option {
	return func(c *Client) {
		c.base = base
	}
}

// NewClient creates a new client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		userAgent:    constants.UserAgent,
		retryMax:     constants.DefaultRetryMax,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	base := client.base
	if base == nil {
		if client.proxy != nil {
			client.transport = NewTransport(client.proxy)
			client.ownsTransport = true
		} else {
			client.transport = DefaultTransport()
		}

		base = &http.Client{
			Transport: client.transport,
			Timeout:   constants.RequestTimeout,
		}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = base
	retryClient.Logger = nil
	retryClient.RetryMax = client.retryMax
	retryClient.RetryWaitMin = client.retryWaitMin
	retryClient.RetryWaitMax = client.retryWaitMax
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client.retryClient = retryClient

	return client
}

// Do executes a request. For non-2xx statuses both the Response and a
// *StatusError are returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.URL == "" {
		return nil, ErrEmptyURL
	}

	target, err := BuildURL(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", constants.AcceptJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": method,
			"url":    RedactURL(target),
		})
	}

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		StatusText: statusText(httpResp),
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"url":         RedactURL(target),
			"status_code": resp.StatusCode,
			"duration":    time.Since(start).String(),
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &StatusError{StatusCode: resp.StatusCode, StatusText: resp.StatusText, Body: body}
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		URL:    rawURL,
		Query:  query,
	})
}

// Close releases idle connections of a transport owned by this client.
// The shared transport is released by CloseDefaultTransport.
func (c *Client) Close() {
	if c.ownsTransport && c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}

// BuildURL merges query into the query string of rawURL. Existing
// parameters with the same name are replaced.
func BuildURL(rawURL string, query url.Values) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	if len(query) == 0 {
		return parsed.String(), nil
	}

	values := parsed.Query()
	for key, vals := range query {
		values.Del(key)

		for _, v := range vals {
			values.Add(key, v)
		}
	}

	parsed.RawQuery = values.Encode()

	return parsed.String(), nil
}

// RedactURL masks the access token in a URL for logging.
func RedactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	values := parsed.Query()
	if values.Get(constants.AccessTokenParam) == "" {
		return rawURL
	}

	values.Set(constants.AccessTokenParam, constants.MaskedSecret)
	parsed.RawQuery = values.Encode()

	return parsed.String()
}

func statusText(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if strings.HasPrefix(resp.Status, prefix) {
		return resp.Status[len(prefix):]
	}

	return http.StatusText(resp.StatusCode)
}

var (
	defaultTransportMu sync.Mutex
	defaultTransport   *http.Transport
)

// DefaultTransport returns the process-wide pooled transport, creating it on
// first use.
func DefaultTransport() *http.Transport {
	defaultTransportMu.Lock()
	defer defaultTransportMu.Unlock()

	if defaultTransport == nil {
		defaultTransport = NewTransport(nil)
	}

	return defaultTransport
}

// CloseDefaultTransport releases the pooled connections of the shared
// transport. A later DefaultTransport call creates a fresh one.
func CloseDefaultTransport() {
	defaultTransportMu.Lock()
	defer defaultTransportMu.Unlock()

	if defaultTransport != nil {
		defaultTransport.CloseIdleConnections()
		defaultTransport = nil
	}
}

// NewTransport builds a pooled transport with the repository timeouts. A nil
// proxy falls back to the environment proxy settings.
func NewTransport(proxy *url.URL) *http.Transport {
	transport := cleanhttp.DefaultPooledTransport()
	transport.DialContext = (&net.Dialer{
		Timeout:   constants.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.IdleConnTimeout = constants.IdleConnTimeout
	transport.TLSHandshakeTimeout = constants.TLSHandshakeTimeout
	transport.MaxConnsPerHost = constants.MaxConnsPerHost
	transport.MaxIdleConnsPerHost = constants.MaxIdleConnsPerHost

	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}

	return transport
}
