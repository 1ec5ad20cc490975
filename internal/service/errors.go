// Package service implements the reservation core: seat
// classification, the transactional reservation orchestrator, the
// expiration reaper and the listing operations exposed to the HTTP
// layer.  All operations take plain validated arguments and return
// plain results or typed errors; no transport concerns leak in.
package service

import "fmt"

// InvalidRequestError reports malformed or out-of-range input, such
// as a quantity outside 1..5 or a ticket type without a section.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// QuotaExceededError reports that granting the request would push the
// user past the per-user seat cap.
type QuotaExceededError struct {
	CurrentSeats int // seats already held or confirmed by the user
	Requested    int
	Limit        int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: user already has %d seats reserved, requested %d more (limit %d)",
		e.CurrentSeats, e.Requested, e.Limit)
}

// InsufficientCapacityError reports that the ticket type's remaining
// capacity cannot cover the requested quantity.
type InsufficientCapacityError struct {
	Available uint32
	Requested uint32
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: %d tickets remaining, requested %d", e.Available, e.Requested)
}

// InsufficientSeatsError reports that fewer allocatable seats exist
// in the ticket type's section than were requested.
type InsufficientSeatsError struct {
	Available int
	Requested int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("only %d seats available, requested %d", e.Available, e.Requested)
}

// SeatConflictError names the seats that could not be claimed, either
// because a sibling service has them in flight on the shared queue or
// because a concurrent reservation won the row-level race.
type SeatConflictError struct {
	SeatIDs []uint64
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat conflict on seats %v", e.SeatIDs)
}
