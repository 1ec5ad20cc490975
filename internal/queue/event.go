// Package queue defines message payloads exchanged over the message
// broker and the two interactions this service has with it: the
// post-commit reservation event publish and the advisory cross-service
// conflict check against the cart queue.
package queue

// ReservationCreatedEvent is published after a reservation commits.
// It carries enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type ReservationCreatedEvent struct {
	EventID        string   `json:"event_id"`
	ReservationID  uint64   `json:"reservation_id"`
	UserID         uint64   `json:"user_id"`
	ConcertID      uint64   `json:"concert_id"`
	TicketTypeID   uint64   `json:"ticket_type_id"`
	SeatIDs        []uint64 `json:"seat_ids"`
	ConcertSeatIDs []uint64 `json:"concert_seat_ids"`
	Quantity       uint32   `json:"quantity"`
	ExpiresAt      string   `json:"expires_at"`
	Timestamp      string   `json:"timestamp"`
}

// cartMessage is the slice of a sibling cart-service message this
// service cares about.  The seatIds key is fixed by the cart
// service's payload contract.
type cartMessage struct {
	SeatIDs []uint64 `json:"seatIds"`
}
