package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any backend rejection of the session token.
var ErrUnauthorized = errors.New("api: session rejected by backend")

// Error is a failed backend call. StatusCode is zero for transport failures.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Transport reports whether the request never produced an HTTP response.
func (e *Error) Transport() bool { return e.StatusCode == 0 }

// Message returns the text to show a user for err: the backend's message
// verbatim when there is one, otherwise err's own text.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Transport() {
			return "Could not reach the server. Please try again."
		}
		return apiErr.Error()
	}
	return err.Error()
}
