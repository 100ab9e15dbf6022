// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package backend

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound       = errors.New("backend: resource not found")
	ErrForbidden      = errors.New("backend: access forbidden")
	ErrUnavailable    = errors.New("backend: host unreachable or transport failure")
	ErrUpstreamError  = errors.New("backend: internal error (5xx)")
	ErrBadResponse    = errors.New("backend: invalid response format or malformed data")
	ErrRequestTimeout = errors.New("backend: request timed out")
)

// APIError wraps the sentinel errors with the failing operation and the
// upstream status for logging at the boundary.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("backend: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}
