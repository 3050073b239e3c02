// Package apperr classifies errors into a small set of kinds and maps each
// kind to the HTTP status the gateway answers with.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

const (
	Invalid         = "invalid"
	Unauthenticated = "unauthenticated"
	Forbidden       = "forbidden"
	NotFound        = "not_found"
	Conflict        = "conflict"
	Timeout         = "timeout"
	Canceled        = "canceled"
	// Upstream means the backend answered, but not with something usable.
	Upstream = "upstream"
	// Unavailable means the backend could not be reached.
	Unavailable = "unavailable"
	Internal    = "internal"
)

// kinder is satisfied by domain errors
// that carry a classification kind.
type kinder interface {
	Kind() string
}

// kindToStatus maps error classification kinds
// to HTTP status codes.
var kindToStatus = map[string]int{
	Invalid:         http.StatusBadRequest,
	Unauthenticated: http.StatusUnauthorized,
	Forbidden:       http.StatusForbidden,
	NotFound:        http.StatusNotFound,
	Conflict:        http.StatusConflict,
	Timeout:         http.StatusGatewayTimeout,
	Canceled:        http.StatusRequestTimeout,
	Upstream:        http.StatusBadGateway,
	Unavailable:     http.StatusBadGateway,
}

// Kind returns the kind of an error.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, context.Canceled):
		return Canceled
	default:
		return Internal
	}
}

func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if s, ok := kindToStatus[Kind(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// KindForStatus classifies an upstream HTTP status.
func KindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return Invalid
	case http.StatusUnauthorized:
		return Unauthenticated
	case http.StatusForbidden:
		return Forbidden
	case http.StatusNotFound:
		return NotFound
	case http.StatusConflict:
		return Conflict
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return Timeout
	default:
		return Upstream
	}
}

// sentinel is a comparable error value that carries its kind.
type sentinel struct {
	msg  string
	kind string
}

func (s *sentinel) Error() string { return s.msg }
func (s *sentinel) Kind() string  { return s.kind }

// New returns a sentinel error classified as kind.
func New(kind, msg string) error {
	return &sentinel{msg: msg, kind: kind}
}
