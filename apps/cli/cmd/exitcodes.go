package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/ultralite/packages/http"
)

// Exit codes for the ultralite CLI
const (
	// ExitSuccess indicates every request completed
	ExitSuccess = 0

	// ExitStatusFailure indicates a non-2XX status with --raise
	ExitStatusFailure = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a request that got no response
	ExitNetworkError = 4

	// ExitSecurityError indicates a TLS setup failure or an https downgrade
	ExitSecurityError = 5

	// ExitUsageError indicates invalid CLI usage or an unimplemented verb
	ExitUsageError = 64
)

// exitError carries the process exit code for an error returned by a command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCode maps an error returned by a command to a process exit code
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	var secErr *http.SecureTransportError
	var downErr *http.SecurityDowngradeError
	var statusErr *http.StatusError
	switch {
	case errors.As(err, &secErr), errors.As(err, &downErr):
		return ExitSecurityError
	case errors.Is(err, http.ErrNotImplemented):
		return ExitUsageError
	case errors.As(err, &statusErr):
		if statusErr.StatusCode == http.TransportFailureStatus {
			return ExitNetworkError
		}
		return ExitStatusFailure
	}
	return ExitUsageError
}
