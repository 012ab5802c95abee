// Package http provides a small requests-style HTTP client.
//
// It wraps the standard library's http package with:
//   - Default headers merged under caller headers
//   - Query parameter encoding merged with existing query strings
//   - A response type that turns transport failures and non-2XX statuses
//     into values instead of errors
//   - Lazy cookie extraction and optional cookie stores
//   - Chained requests that reuse the session of a previous response and
//     refuse to step down from https to http
//
// Only GET and HEAD are implemented; POST, PUT and DELETE return
// ErrNotImplemented.
package http
