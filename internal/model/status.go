package model

// StatusGeneral is a reference row mapping a (domain, description)
// pair to the stable identifier used in status_id foreign keys.
// The table is read-only at runtime from this service's
// perspective; lookups inside a transaction read from that
// transaction's snapshot so repeated lookups observe the same
// mapping.
//
// Fields:
//  ID          – primary key identifier.
//  Domain      – status namespace ("seat" or "reservation").
//  Description – symbolic state name within the domain.
//  Active      – whether the row is in use.
type StatusGeneral struct {
	ID          uint64 // status_general.id
	Domain      string // status_general.domain
	Description string // status_general.description
	Active      bool   // status_general.active
}

// Status domains.
const (
	StatusDomainSeat        = "seat"
	StatusDomainReservation = "reservation"
)

// Seat statuses.
const (
	SeatAvailable = "available"
	SeatInCart    = "in_cart"
	SeatReserved  = "reserved"
	SeatOccupied  = "occupied"
)

// Reservation statuses.
const (
	ReservationHeld      = "held"
	ReservationConfirmed = "confirmed"
	ReservationExpired   = "expired"
)
