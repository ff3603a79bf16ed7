package anaconda

import (
	"fmt"
	"strings"

	"github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/rest"
)

// Errors re-exported from rest.
var (
	// ErrUnauthorized is returned for HTTP 401 responses.
	ErrUnauthorized = rest.ErrUnauthorized

	// ErrNotFound is returned for HTTP 404 responses.
	ErrNotFound = rest.ErrNotFound

	// ErrConflict is returned for HTTP 409 responses.
	ErrConflict = rest.ErrConflict

	// ErrServer is returned for HTTP 5xx responses.
	ErrServer = rest.ErrServer
)

// Error types re-exported from rest.
type (
	// Error is the typed failure for a non-allowed API response status.
	Error = rest.Error

	// TransportError wraps a network-level failure before any status
	// was known.
	TransportError = rest.TransportError

	// ValidationError reports bad local arguments.
	ValidationError = rest.ValidationError
)

// UploadError reports a failed storage transfer. The staged entry is left
// orphaned server-side; the commit phase never ran. Body carries the
// storage backend's response for diagnostics.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	msg := fmt.Sprintf("anaconda: storage upload failed with status %d", e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}
