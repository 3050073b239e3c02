package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jcmexdev/bizops-dashboard/internal/pkg/apperr"
)

// ErrUnauthenticated is returned without any network call when an endpoint
// that is scoped to the current user is invoked with no token.
var ErrUnauthenticated = apperr.New(apperr.Unauthenticated, "backend: not authenticated")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %s %s returned %d", e.Method, e.Path, e.Status)
}

func (e *APIError) Kind() string { return apperr.KindForStatus(e.Status) }

// TransportError wraps a failure to reach the backend at all.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Kind() string {
	if k := apperr.Kind(e.Err); k == apperr.Timeout || k == apperr.Canceled {
		return k
	}
	return apperr.Unavailable
}

// SchemaError means the response body did not have the expected shape.
// Every resource client hard-fails on this; there is no best-effort reshaping.
type SchemaError struct {
	Resource string
	Err      error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("backend: unexpected %s response: %v", e.Resource, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Kind() string { return apperr.Upstream }

// ValidationError is an input rejected before it was sent.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("backend: invalid input for %s: %s", e.Op, strings.Join(parts, ", "))
}

func (e *ValidationError) Kind() string { return apperr.Invalid }

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
