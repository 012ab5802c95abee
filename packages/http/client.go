package http

import (
	"context"
	"crypto/x509"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections per transport
	DefaultMaxIdleConns = 10
	// DefaultIdleConnTimeout is how long idle connections stay open
	DefaultIdleConnTimeout = 90 * time.Second
)

// Client holds the configuration shared by every call made through it.
// The configuration is fixed once NewClient returns and a Client may be
// shared freely. Connections are pooled across clients and sessions.
type Client struct {
	timeout         time.Duration
	followRedirect  bool
	maxRedirects    int
	validateSSL     bool
	rootCAs         *x509.CertPool
	defaultHeaders  map[string]string
	logger          *zap.Logger
	rateLimit       float64
	limiter         *rate.Limiter
	requestIDHeader string

	// secure transport over rootCAs, built on first https use
	mu     sync.Mutex
	secure *http.Transport
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		defaultHeaders: make(map[string]string),
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.rateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(c.rateLimit), 1)
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithRootCAs replaces the platform trust store with pool
func WithRootCAs(pool *x509.CertPool) ClientOption {
	return func(c *Client) {
		c.rootCAs = pool
	}
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRateLimit caps the client at rps requests per second. Calls block
// until the limiter admits them.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.rateLimit = rps
	}
}

// WithRequestID stamps a random UUID into header on every request that
// does not already carry one.
func WithRequestID(header string) ClientOption {
	return func(c *Client) {
		c.requestIDHeader = header
	}
}

// DefaultHeaders returns a copy of the headers added to every request
func (c *Client) DefaultHeaders() map[string]string {
	headers := make(map[string]string, len(c.defaultHeaders))
	for k, v := range c.defaultHeaders {
		headers[k] = v
	}
	return headers
}

func (c *Client) Get(url string, opts *Options) (*Response, error) {
	return c.call(http.MethodGet, url, opts)
}

func (c *Client) Head(url string, opts *Options) (*Response, error) {
	return c.call(http.MethodHead, url, opts)
}

func (c *Client) Post(url string, opts *Options) (*Response, error) {
	return nil, notImplemented(http.MethodPost)
}

func (c *Client) Put(url string, opts *Options) (*Response, error) {
	return nil, notImplemented(http.MethodPut)
}

func (c *Client) Delete(url string, opts *Options) (*Response, error) {
	return nil, notImplemented(http.MethodDelete)
}

func (c *Client) call(method, url string, opts *Options) (*Response, error) {
	if opts == nil {
		opts = &Options{}
	}

	session, err := c.NewSession(opts.Cookies)
	if err != nil {
		return nil, err
	}

	req := BuildRequest(method, url, c.defaultHeaders, opts.Headers, opts.Params)
	return session.Do(context.Background(), req)
}

func notImplemented(method string) error {
	return fmt.Errorf("%s: %w", method, ErrNotImplemented)
}

// DefaultClient is used by the package level verbs
var DefaultClient = NewClient()

func Get(url string, opts *Options) (*Response, error) {
	return DefaultClient.Get(url, opts)
}

func Head(url string, opts *Options) (*Response, error) {
	return DefaultClient.Head(url, opts)
}

func Post(url string, opts *Options) (*Response, error) {
	return DefaultClient.Post(url, opts)
}

func Put(url string, opts *Options) (*Response, error) {
	return DefaultClient.Put(url, opts)
}

func Delete(url string, opts *Options) (*Response, error) {
	return DefaultClient.Delete(url, opts)
}
