package tjweather

import "fmt"

// TransportError is a failure to get a usable response: network errors,
// timeouts, or bodies that are not a JSON envelope.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError is a well-formed envelope whose code is not 200.
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("query failed (%d): %s", e.Code, e.Message)
}
