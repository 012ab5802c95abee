package http

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"reflect"

	"golang.org/x/net/publicsuffix"
)

// CookieJar is the capability a cookie store needs: storing cookies from
// responses and supplying them to outgoing requests.
type CookieJar = http.CookieJar

// NewCookieStore returns an empty in-memory cookie store that follows the
// public suffix list when deciding cookie domains.
func NewCookieStore() (CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie store: %w", err)
	}
	return jar, nil
}

// checkCookieJar rejects a jar interface that wraps a nil value, which
// net/http would otherwise dereference on the first exchange.
func checkCookieJar(jar CookieJar) error {
	if jar == nil {
		return nil
	}
	v := reflect.ValueOf(jar)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		if v.IsNil() {
			return &CookieStoreError{Got: fmt.Sprintf("nil %T", jar)}
		}
	}
	return nil
}

func cookiesMap(cookies []*http.Cookie) map[string]string {
	m := make(map[string]string, len(cookies))
	for _, c := range cookies {
		m[c.Name] = c.Value
	}
	return m
}
