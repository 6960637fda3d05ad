// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that a conditional update
// observed a different state than the caller expected (a lost
// optimistic-concurrency race).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own or lack the role for. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because
// the record no longer holds the state the caller observed, such as
// cancelling a booking that another request already transitioned.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrUnavailable wraps transient store failures (network, timeout).
// The outcome of the attempted write is unknown; callers may retry the
// whole read-decide-write cycle but must not assume the write failed.
// Handlers should translate this into an HTTP 503 response.
var ErrUnavailable = errors.New("store unavailable")

// ErrBookingNotFound is returned when no booking exists for the given id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrPassNotFound is returned when no pass exists for the given id.
var ErrPassNotFound = errors.New("pass not found")

// ErrDiscountNotFound is returned when no matching discount exists.
var ErrDiscountNotFound = errors.New("discount not found")
