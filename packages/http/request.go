package http

import (
	"net/url"
	"strings"
)

type Request struct {
	Method   string
	URL      string
	Headers  map[string]string
	UsingSSL bool
}

// Options are the per-call arguments of the top level verbs.
type Options struct {
	Headers map[string]string
	Params  map[string]string
	// Cookies is attached to the session created for the call. Cookies set
	// by the server are stored into it and sent on chained requests.
	Cookies CookieJar
}

// BuildRequest assembles a request from the client defaults, the caller
// headers and the query params. Caller headers win over defaults, compared
// case-insensitively. Malformed URLs are not reported here.
func BuildRequest(method, rawURL string, defaults, headers, params map[string]string) *Request {
	merged := make(map[string]string, len(defaults)+len(headers))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range headers {
		for existing := range merged {
			if existing != k && strings.EqualFold(existing, k) {
				delete(merged, existing)
			}
		}
		merged[k] = v
	}

	return &Request{
		Method:  method,
		URL:     BuildURL(rawURL, params),
		Headers: merged,
	}
}

// BuildURL attaches params to rawURL, merging with any query string already
// present. Unparseable URLs get the encoded params appended verbatim.
func BuildURL(rawURL string, params map[string]string) string {
	if len(params) == 0 {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return rawURL + sep + values.Encode()
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Header returns the value of a request header, matched case-insensitively
func (r *Request) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func isHTTPS(rawURL string) bool {
	return len(rawURL) >= len("https:") && strings.EqualFold(rawURL[:len("https:")], "https:")
}
