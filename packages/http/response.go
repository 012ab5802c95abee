package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// Response wraps the outcome of one exchange together with the request that
// produced it and the session that carried it.
type Response struct {
	Outcome  Outcome
	Duration time.Duration

	request *Request
	raw     *http.Response
	session *Session

	cookiesOnce sync.Once
	cookies     []*http.Cookie
}

// StatusCode returns the HTTP status, or TransportFailureStatus when no
// response was received.
func (r *Response) StatusCode() int {
	switch o := r.Outcome.(type) {
	case Success:
		return o.StatusCode
	case ProtocolError:
		return o.StatusCode
	}
	return TransportFailureStatus
}

// Reason returns the status text, or the failure description for transport errors
func (r *Response) Reason() string {
	switch o := r.Outcome.(type) {
	case Success:
		return o.Reason
	case ProtocolError:
		return o.Reason
	case TransportError:
		return o.Reason
	}
	return ""
}

func (r *Response) Headers() map[string]string {
	var headers map[string]string
	switch o := r.Outcome.(type) {
	case Success:
		headers = o.Headers
	case ProtocolError:
		headers = o.Headers
	}
	if headers == nil {
		return map[string]string{}
	}
	return headers
}

func (r *Response) Header(key string) string {
	for k, v := range r.Headers() {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Content returns the raw body. It is empty for HEAD requests, non-2XX
// statuses and transport failures.
func (r *Response) Content() []byte {
	if o, ok := r.Outcome.(Success); ok && o.Body != nil {
		return o.Body
	}
	return []byte{}
}

// Text decodes the body as UTF-8. Other charsets are not detected.
func (r *Response) Text() (string, error) {
	body := r.Content()
	if !utf8.Valid(body) {
		return "", ErrInvalidUTF8
	}
	return string(body), nil
}

func (r *Response) JSON() (any, error) {
	var result any
	if err := r.DecodeJSON(&result); err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeJSON unmarshals the body into v
func (r *Response) DecodeJSON(v any) error {
	text, err := r.Text()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(text), v)
}

// Path looks up a gjson path in the body
func (r *Response) Path(path string) gjson.Result {
	return gjson.GetBytes(r.Content(), path)
}

// ValidateSchema checks the body against a JSON schema document
func (r *Response) ValidateSchema(schema []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(r.Content()),
	)
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &SchemaError{Violations: violations}
}

// RaiseForStatus returns a *StatusError unless the status is within 200-299
func (r *Response) RaiseForStatus() error {
	if code := r.StatusCode(); code < 200 || code > 299 {
		return &StatusError{StatusCode: code, Reason: r.Reason()}
	}
	return nil
}

// Cookies returns the cookies set by this response, including those set on
// redirect hops before the final one. Without recorded hops they are parsed
// from the raw exchange on the first call and cached afterwards.
func (r *Response) Cookies() []*http.Cookie {
	r.cookiesOnce.Do(func() {
		if r.cookies == nil && r.raw != nil {
			r.cookies = r.raw.Cookies()
		}
		if r.cookies == nil {
			r.cookies = []*http.Cookie{}
		}
	})
	return r.cookies
}

// CookiesMap returns the cookies set by this response keyed by name
func (r *Response) CookiesMap() map[string]string {
	return cookiesMap(r.Cookies())
}

// Request returns the request that was sent
func (r *Response) Request() *Request {
	return r.request
}

// Raw returns the underlying net/http response, or nil for transport failures
func (r *Response) Raw() *http.Response {
	return r.raw
}

// Session returns the transport context used for the exchange
func (r *Response) Session() *Session {
	return r.session
}

func (r *Response) BodyString() string {
	return string(r.Content())
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json")
}

func (r *Response) IsSuccess() bool {
	code := r.StatusCode()
	return code >= 200 && code < 300
}

func (r *Response) IsRedirect() bool {
	code := r.StatusCode()
	return code >= 300 && code < 400
}

func (r *Response) IsClientError() bool {
	code := r.StatusCode()
	return code >= 400 && code < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode() >= 500
}

// IsTransportFailure reports whether no response was received
func (r *Response) IsTransportFailure() bool {
	_, ok := r.Outcome.(TransportError)
	return ok || r.Outcome == nil
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
