package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
)

// Sentinel errors for the status-classified taxonomy. Every failed API
// call returns a *Error; these sentinels surface through errors.Is.
var (
	// ErrUnauthorized is returned for HTTP 401 responses.
	ErrUnauthorized = newSentinel("unauthorized")

	// ErrNotFound is returned for HTTP 404 responses.
	ErrNotFound = newSentinel("not found")

	// ErrConflict is returned for HTTP 409 responses.
	ErrConflict = newSentinel("conflict")

	// ErrServer is returned for HTTP 5xx responses.
	ErrServer = newSentinel("server error")
)

type sentinelError struct{ msg string }

func (e *sentinelError) Error() string { return "rest: " + e.msg }

func newSentinel(msg string) error { return &sentinelError{msg: msg} }

// Error is the typed failure for a non-allowed HTTP status. Message holds
// the server-provided error text when the body parsed as JSON, otherwise
// a synthesized description that already embeds method, URL, and status.
type Error struct {
	Status  int
	Method  string
	URL     string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap maps the status onto the taxonomy sentinel, making
// errors.Is(err, rest.ErrNotFound) and friends work. Statuses outside the
// taxonomy unwrap to nothing and stay generic.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status >= 500:
		return ErrServer
	}
	return nil
}

// TransportError wraps a network-level failure that happened before any
// HTTP status was known.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rest: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError reports bad local arguments, detected before any
// request is sent.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid argument: " + e.Reason
}

// NewError builds the typed error for a status with a synthesized
// message. It serves call sites that drive raw HTTP requests outside the
// shared session, such as the storage legs of uploads and downloads.
func NewError(status int, method, url string) *Error {
	short, long := describeStatus(status)
	return &Error{
		Status:  status,
		Method:  method,
		URL:     url,
		Message: fmt.Sprintf("%s: %s ([%s] %s -> %d)", short, long, method, url, status),
	}
}

// maxErrorBody bounds how much of a failed response is read for its
// error message.
const maxErrorBody = 1 << 20

// checkStatus enforces the translation policy: every status outside
// allowed produces exactly one typed error, built from the server's JSON
// "error" field when present.
func (c *Client) checkStatus(resp *http.Response, allowed []int) error {
	if len(allowed) == 0 {
		allowed = []int{http.StatusOK}
	}
	if slices.Contains(allowed, resp.StatusCode) {
		return nil
	}

	apiErr := NewError(resp.StatusCode, resp.Request.Method, resp.Request.URL.String())

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		apiErr.Message = parsed.Error
	}
	return apiErr
}
