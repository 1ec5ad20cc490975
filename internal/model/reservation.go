package model

import "time"

// Reservation is a time-boxed hold owned by one user for one
// concert.  It is created in the held state with a fixed
// expiration; an external confirmation flow moves it to
// confirmed, the expiration reaper moves it to expired.  The
// expiration instant is set at creation and never extended.
// Reservations are never physically deleted.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – user who owns the hold.
//  ConcertID    – concert being reserved.
//  TicketTypeID – ticket type whose capacity was decremented;
//                 recorded so the reaper can restore it on expiry.
//  StatusID     – reservation status (held, confirmed, expired).
//  ExpiresAt    – when the hold lapses (UTC).
//  CreatedAt    – creation timestamp.
type Reservation struct {
	ID           uint64    // reservations.id
	UserID       uint64    // reservations.user_id
	ConcertID    uint64    // reservations.concert_id
	TicketTypeID uint64    // reservations.ticket_type_id
	StatusID     uint64    // reservations.status_id
	ExpiresAt    time.Time // reservations.expires_at
	CreatedAt    time.Time // reservations.created_at
}

// ReservationSeat joins a reservation to the concert seat it
// claims.  Rows are created atomically with the reservation and
// deleted by the reaper once the parent expires; the concert
// seat status change is the durable record of release, the join
// row is transient bookkeeping.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – owning reservation.
//  SeatID        – physical seat claimed.
//  ConcertSeatID – per-concert seat row whose status was flipped.
type ReservationSeat struct {
	ID            uint64 // reservation_seats.id
	ReservationID uint64 // reservation_seats.reservation_id
	SeatID        uint64 // reservation_seats.seat_id
	ConcertSeatID uint64 // reservation_seats.concert_seat_id
}
