package http

// TransportFailureStatus is the status code reported when no response was received.
const TransportFailureStatus = -1

// Outcome is the result of one exchange. It is one of Success,
// ProtocolError or TransportError.
type Outcome interface {
	outcome()
}

// Success is a 2XX exchange with its body read.
type Success struct {
	StatusCode int
	Reason     string
	Headers    map[string]string
	Body       []byte
}

// ProtocolError is an exchange that completed with a non-2XX status.
// Its body is not retained.
type ProtocolError struct {
	StatusCode int
	Reason     string
	Headers    map[string]string
}

// TransportError is an exchange that produced no response at all,
// e.g. name resolution failure, refused connection or timeout.
type TransportError struct {
	Reason string
	Err    error
}

func (Success) outcome()        {}
func (ProtocolError) outcome()  {}
func (TransportError) outcome() {}

func (e TransportError) Unwrap() error {
	return e.Err
}
