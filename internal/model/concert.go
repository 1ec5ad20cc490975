package model

import "time"

// Concert is a single ticketed event.  A concert owns a pool of
// ConcertSeat rows (one per physical seat) which carry the
// per-event availability status.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – concert title.
//  Date      – when the concert takes place (UTC).
//  CreatedAt – creation timestamp.
type Concert struct {
	ID        uint64    // concerts.id
	Title     string    // concerts.title
	Date      time.Time // concerts.date
	CreatedAt time.Time // concerts.created_at
}

// ConcertSeat is the per-event instance of a physical seat and
// the unit of contention in the reservation flow.  Its status is
// mutated only by the reservation orchestrator and the expiration
// reaper; the row itself is never deleted while the concert
// exists.
//
// Fields:
//  ID        – primary key identifier.
//  ConcertID – concert this seat instance belongs to.
//  SeatID    – physical seat being instantiated.
//  StatusID  – current status (available, in_cart, reserved,
//              occupied) resolved through status_general.
type ConcertSeat struct {
	ID        uint64 // concert_seats.id
	ConcertID uint64 // concert_seats.concert_id
	SeatID    uint64 // concert_seats.seat_id
	StatusID  uint64 // concert_seats.status_id
}
