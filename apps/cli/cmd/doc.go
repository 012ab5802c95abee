// Package cmd implements the ultralite CLI commands using Cobra.
//
// Available commands:
//   - get: Send a GET request, optionally chaining more through one session
//   - head: Send a HEAD request
//   - post, put, delete: Reserved verbs that report not implemented
//   - completion: Generate shell completion scripts
//   - version: Show ultralite version information
//
// Process exit codes are listed in exitcodes.go.
package cmd
