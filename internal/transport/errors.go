package transport

import "fmt"

// APIError is a non-2xx response from the scheduling API. Status and the
// server's message are preserved for display; Body keeps the raw decoded
// payload for callers that need more than the message.
type APIError struct {
	Status  int
	Message string
	Body    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NetworkError means the request never received a response.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UnexpectedError covers everything else: request construction,
// serialization and decode failures.
type UnexpectedError struct {
	Message string
	Err     error
}

func (e *UnexpectedError) Error() string {
	return "unexpected error: " + e.Message
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Retryable reports whether a failed call is worth repeating. Network
// failures and server-side errors (5xx, 429) are transient; client errors
// and local failures are not.
func Retryable(err error) bool {
	switch e := err.(type) {
	case *NetworkError:
		return true
	case *APIError:
		return e.Status == 429 || e.Status >= 500
	default:
		return false
	}
}
