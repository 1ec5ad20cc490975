package service

import (
	"github.com/iliyamo/concert-ticket-reservation/internal/repository"
)

// AllocatableSeat is a candidate seat the orchestrator may claim.
type AllocatableSeat struct {
	SeatID        uint64 `json:"seat_id"`
	ConcertSeatID uint64 `json:"concert_seat_id"`
	SeatNumber    uint32 `json:"seat_number"`
}

// BlockedSeat is a seat that cannot be claimed, with the reason.
type BlockedSeat struct {
	SeatID     uint64 `json:"seat_id"`
	SeatNumber uint32 `json:"seat_number"`
	Reason     string `json:"reason"`
}

// SeatWarning flags a soft conflict on a seat that the request may
// still proceed over (or, for the caller's own held seats, a
// duplicate claim that was skipped).
type SeatWarning struct {
	SeatID     uint64 `json:"seat_id"`
	SeatNumber uint32 `json:"seat_number"`
	Message    string `json:"message"`
}

// SeatClassification partitions a candidate seat set.  A seat id
// never appears in both Allocatable and Blocked; warnings may
// accompany either outcome.
type SeatClassification struct {
	Allocatable []AllocatableSeat `json:"allocatable"`
	Blocked     []BlockedSeat     `json:"blocked"`
	Warnings    []SeatWarning     `json:"warnings"`
}

// Blocked-seat reasons and warning messages surfaced to callers.
const (
	reasonHeldByOther = "seat is held by another user"
	reasonSold        = "seat is sold"

	warnInCart      = "seat is in another service's cart and could be purchased soon"
	warnAlreadyHeld = "you already hold this seat"
)

// heldByUserFn reports whether a concert seat is claimed by a held
// reservation belonging to the requesting user.  It is a function so
// the classification matrix can be exercised without a database.
type heldByUserFn func(concertSeatID uint64) (bool, error)

// classifyRows applies the availability matrix to the loaded concert
// seat rows:
//
//	available → allocatable
//	in_cart   → allocatable, with a soft-conflict warning
//	reserved  → warning when held by the requesting user (no duplicate
//	            claim), blocked otherwise
//	occupied  → blocked (sold)
//
// Seat ids that had no concert_seats row for the concert never reach
// this function: the repository query drops them, and callers must
// count quantities against the classification, not the input.
func classifyRows(rows []repository.ConcertSeatRow, statuses repository.SeatStatusSet, heldByUser heldByUserFn) (SeatClassification, error) {
	result := SeatClassification{
		Allocatable: []AllocatableSeat{},
		Blocked:     []BlockedSeat{},
		Warnings:    []SeatWarning{},
	}
	for _, row := range rows {
		switch row.StatusID {
		case statuses.Available:
			result.Allocatable = append(result.Allocatable, AllocatableSeat{
				SeatID:        row.SeatID,
				ConcertSeatID: row.ID,
				SeatNumber:    row.SeatNumber,
			})
		case statuses.InCart:
			// Optimistic allocation: the cart hold lives in a sibling
			// service and this service's committed state is the source
			// of truth for seat events.
			result.Warnings = append(result.Warnings, SeatWarning{
				SeatID:     row.SeatID,
				SeatNumber: row.SeatNumber,
				Message:    warnInCart,
			})
			result.Allocatable = append(result.Allocatable, AllocatableSeat{
				SeatID:        row.SeatID,
				ConcertSeatID: row.ID,
				SeatNumber:    row.SeatNumber,
			})
		case statuses.Reserved:
			mine, err := heldByUser(row.ID)
			if err != nil {
				return SeatClassification{}, err
			}
			if mine {
				result.Warnings = append(result.Warnings, SeatWarning{
					SeatID:     row.SeatID,
					SeatNumber: row.SeatNumber,
					Message:    warnAlreadyHeld,
				})
			} else {
				result.Blocked = append(result.Blocked, BlockedSeat{
					SeatID:     row.SeatID,
					SeatNumber: row.SeatNumber,
					Reason:     reasonHeldByOther,
				})
			}
		case statuses.Occupied:
			result.Blocked = append(result.Blocked, BlockedSeat{
				SeatID:     row.SeatID,
				SeatNumber: row.SeatNumber,
				Reason:     reasonSold,
			})
		}
	}
	return result, nil
}

// selectSeats takes the first quantity allocatable seats in
// classification order.  Candidates arrive ordered by ascending seat
// id, so selection is deterministic.
func selectSeats(allocatable []AllocatableSeat, quantity int) []AllocatableSeat {
	if quantity > len(allocatable) {
		quantity = len(allocatable)
	}
	return allocatable[:quantity]
}
