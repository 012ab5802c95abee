package http

import (
	"context"
	"net/http"
)

// ChainOptions are the arguments of a chained call. The cookie store is
// inherited from the parent session and cannot be replaced.
type ChainOptions struct {
	Headers map[string]string
	Params  map[string]string
}

// Get issues a follow-up GET through the session that produced r, so
// cookies stored by earlier exchanges are sent along.
func (r *Response) Get(url string, opts *ChainOptions) (*Response, error) {
	return r.chain(http.MethodGet, url, opts)
}

func (r *Response) Head(url string, opts *ChainOptions) (*Response, error) {
	return r.chain(http.MethodHead, url, opts)
}

func (r *Response) Post(url string, opts *ChainOptions) (*Response, error) {
	return r.chain(http.MethodPost, url, opts)
}

func (r *Response) Put(url string, opts *ChainOptions) (*Response, error) {
	return r.chain(http.MethodPut, url, opts)
}

func (r *Response) Delete(url string, opts *ChainOptions) (*Response, error) {
	return r.chain(http.MethodDelete, url, opts)
}

func (r *Response) chain(method, url string, opts *ChainOptions) (*Response, error) {
	secure := r.request != nil && r.request.UsingSSL
	if secure && !isHTTPS(url) {
		return nil, &SecurityDowngradeError{From: r.request.URL, To: url}
	}

	if method != http.MethodGet && method != http.MethodHead {
		return nil, notImplemented(method)
	}

	if opts == nil {
		opts = &ChainOptions{}
	}

	session := r.session
	if session == nil {
		var err error
		if session, err = DefaultClient.NewSession(nil); err != nil {
			return nil, err
		}
	}

	req := BuildRequest(method, url, session.client.defaultHeaders, opts.Headers, opts.Params)
	req.UsingSSL = secure
	return session.Do(context.Background(), req)
}
