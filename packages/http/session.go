package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// systemCertPool is swapped in tests to simulate a broken trust store
var systemCertPool = x509.SystemCertPool

// Session is the transport context of a chain of requests. It owns the
// opener, the redirect policy and the optional cookie store. Transports are
// pooled and shared across sessions; a session is marked secure the first
// time an https URL goes through it.
// A Session is not safe for concurrent use.
type Session struct {
	client     *Client
	httpClient *http.Client
	jar        CookieJar
	secure     bool

	// cookies set by every hop of the exchange in flight
	hopCookies []*http.Cookie
}

// NewSession creates a transport context with jar attached. jar may be nil.
func (c *Client) NewSession(jar CookieJar) (*Session, error) {
	if err := checkCookieJar(jar); err != nil {
		return nil, err
	}

	s := &Session{
		client: c,
		jar:    jar,
	}

	s.httpClient = &http.Client{
		Transport:     s,
		CheckRedirect: s.checkRedirect,
	}
	if jar != nil {
		s.httpClient.Jar = jar
	}

	return s, nil
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:           nil,
		MaxIdleConns:    DefaultMaxIdleConns,
		IdleConnTimeout: DefaultIdleConnTimeout,
	}
}

// transports pools the transports that carry no client specific settings:
// the plain one, and the secure ones over the platform trust store keyed by
// whether certificates are validated.
var transports = struct {
	sync.Mutex
	plain  *http.Transport
	system map[bool]*http.Transport
}{system: make(map[bool]*http.Transport)}

func (c *Client) plainTransport() *http.Transport {
	transports.Lock()
	defer transports.Unlock()
	if transports.plain == nil {
		transports.plain = newTransport()
	}
	return transports.plain
}

func newSecureTransport(roots *x509.CertPool, validate bool) *http.Transport {
	t := newTransport()
	t.TLSClientConfig = &tls.Config{
		RootCAs:            roots,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !validate,
	}
	return t
}

// secureTransport returns the secure transport for the configured roots or
// the platform trust store. A failure to load the trust store is not
// cached, and it never falls back to plaintext.
func (c *Client) secureTransport(rawURL string) (*http.Transport, error) {
	if c.rootCAs != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.secure == nil {
			c.secure = newSecureTransport(c.rootCAs, c.validateSSL)
		}
		return c.secure, nil
	}

	transports.Lock()
	defer transports.Unlock()
	if t, ok := transports.system[c.validateSSL]; ok {
		return t, nil
	}
	pool, err := systemCertPool()
	if err != nil {
		return nil, &SecureTransportError{URL: rawURL, Err: err}
	}
	t := newSecureTransport(pool, c.validateSSL)
	transports.system[c.validateSSL] = t
	return t, nil
}

// CloseIdleConnections closes idle keep-alive connections of the transports
// the client sends through
func (c *Client) CloseIdleConnections() {
	c.plainTransport().CloseIdleConnections()

	c.mu.Lock()
	if c.secure != nil {
		c.secure.CloseIdleConnections()
	}
	c.mu.Unlock()

	transports.Lock()
	if t, ok := transports.system[c.validateSSL]; ok {
		t.CloseIdleConnections()
	}
	transports.Unlock()
}

// Client returns the configuration the session was created from
func (s *Session) Client() *Client {
	return s.client
}

// Jar returns the attached cookie store, or nil
func (s *Session) Jar() CookieJar {
	return s.jar
}

// Secure reports whether the secure transport handler is attached
func (s *Session) Secure() bool {
	return s.secure
}

// Close releases idle connections held by the client's transports
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}

func (s *Session) attachSecure(rawURL string) (*http.Transport, error) {
	t, err := s.client.secureTransport(rawURL)
	if err != nil {
		return nil, err
	}
	s.secure = true
	return t, nil
}

// RoundTrip dispatches to the secure or plain transport by scheme
func (s *Session) RoundTrip(req *http.Request) (*http.Response, error) {
	t := s.client.plainTransport()
	if req.URL.Scheme == "https" {
		var err error
		if t, err = s.attachSecure(req.URL.String()); err != nil {
			return nil, err
		}
	}

	resp, err := t.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	s.hopCookies = append(s.hopCookies, resp.Cookies()...)
	return resp, nil
}

func (s *Session) checkRedirect(req *http.Request, via []*http.Request) error {
	if !s.client.followRedirect {
		return http.ErrUseLastResponse
	}
	if prev := via[len(via)-1]; prev.URL.Scheme == "https" && req.URL.Scheme != "https" {
		return &SecurityDowngradeError{From: prev.URL.String(), To: req.URL.String(), Redirect: true}
	}
	if len(via) >= s.client.maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}

// Do performs one exchange. Transport failures, refused redirects and
// non-2XX statuses are reported through the response outcome; the error is
// reserved for secure transport setup and unimplemented methods.
func (s *Session) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return nil, notImplemented(req.Method)
	}

	if isHTTPS(req.URL) {
		if _, err := s.attachSecure(req.URL); err != nil {
			return nil, err
		}
		req.UsingSSL = true
	}

	if h := s.client.requestIDHeader; h != "" && req.Header(h) == "" {
		if req.Headers == nil {
			req.Headers = make(map[string]string)
		}
		req.Headers[h] = uuid.NewString()
	}

	if s.client.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.client.timeout)
		defer cancel()
	}

	start := time.Now()

	if s.client.limiter != nil {
		if err := s.client.limiter.Wait(ctx); err != nil {
			return s.failed(req, nil, err, time.Since(start)), nil
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, nil)
	if err != nil {
		return s.failed(req, nil, err, time.Since(start)), nil
	}

	for k, v := range req.Headers {
		if strings.EqualFold(k, "Host") {
			httpReq.Host = v
			continue
		}
		httpReq.Header.Set(k, v)
	}

	s.hopCookies = nil

	httpResp, err := s.httpClient.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		var secErr *SecureTransportError
		if errors.As(err, &secErr) {
			return nil, secErr
		}
		return s.failed(req, nil, err, duration), nil
	}
	defer httpResp.Body.Close()

	headers := make(map[string]string)
	for k := range httpResp.Header {
		headers[k] = httpResp.Header.Get(k)
	}
	reason := reasonPhrase(httpResp)

	resp := &Response{
		request:  req,
		raw:      httpResp,
		session:  s,
		Duration: duration,
		cookies:  append([]*http.Cookie{}, s.hopCookies...),
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, httpResp.Body)
		resp.Outcome = ProtocolError{
			StatusCode: httpResp.StatusCode,
			Reason:     reason,
			Headers:    headers,
		}
		s.client.logger.Debug("exchange completed",
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Int("status", httpResp.StatusCode),
			zap.Duration("duration", duration))
		return resp, nil
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return s.failed(req, httpResp, err, time.Since(start)), nil
	}

	resp.Outcome = Success{
		StatusCode: httpResp.StatusCode,
		Reason:     reason,
		Headers:    headers,
		Body:       body,
	}
	s.client.logger.Debug("exchange completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("status", httpResp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", duration))
	return resp, nil
}

func (s *Session) failed(req *Request, raw *http.Response, err error, duration time.Duration) *Response {
	reason := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		reason = urlErr.Err.Error()
	}

	s.client.logger.Warn("exchange failed",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Error(err))

	return &Response{
		Outcome:  TransportError{Reason: reason, Err: err},
		Duration: duration,
		request:  req,
		raw:      raw,
		session:  s,
	}
}

func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
