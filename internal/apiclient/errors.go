package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned for any non-2xx response. The backend has no error
// code taxonomy, so Message is the response body text as-is (trimmed).
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// DecodeError is returned when a success response carries malformed JSON.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Message returns the text a user should see for err: the opaque body text
// for HTTP errors, the error string otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return err.Error()
}

func statusMessage(code int, body []byte) string {
	if msg := trimBody(body); msg != "" {
		return msg
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", code)
}
