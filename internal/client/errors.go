package client

import "fmt"

// ConnectionError is a transport-level failure (unreachable pod, timeout).
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error for %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the free-sleep server.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d for %s: %s", e.StatusCode, e.Op, e.Body)
}
