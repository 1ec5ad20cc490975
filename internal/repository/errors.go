// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// ticket service to distinguish between different failure scenarios
// without inspecting driver-specific errors.
package repository

import "errors"

// ErrStatusNotFound is returned by the status registry when no
// status_general row matches a (domain, description) pair. Reference
// data is seeded at deploy time, so hitting this usually means a
// misconfigured database.
var ErrStatusNotFound = errors.New("status not found")

// ErrConcertNotFound is returned when a concert id does not resolve
// to an existing concert.
var ErrConcertNotFound = errors.New("concert not found")

// ErrTicketTypeNotFound is returned when a ticket type does not exist
// or is not assigned to the requested concert.
var ErrTicketTypeNotFound = errors.New("ticket type not found")
