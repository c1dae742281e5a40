package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// RequestError is returned by GET requests that receive a non-2xx status.
type RequestError struct {
	Status     int
	StatusText string
	URL        string
}

func (e *RequestError) Error() string {
	return "HTTP error: " + e.StatusText
}

// APIError is returned by mutations that receive a non-2xx status. Message
// carries the server-supplied message when the body had one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// ParseError wraps a JSON decode failure of a successful response.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is a RequestError or APIError with the
// given HTTP status.
func IsStatus(err error, status int) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status == status
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}

// statusText returns the reason phrase of resp, e.g. "Not Found".
func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
