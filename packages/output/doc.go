// Package output provides formatters for printing HTTP responses.
//
// Supported formats:
//   - Console: colored status line, optional headers and cookies, body
//   - JSON: one document holding every response of a run
package output
