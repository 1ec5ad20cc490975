package model

import "time"

// Seat describes a physical seat in a venue.  Seats are created
// when the venue is set up and keep a stable identity for the
// lifetime of the venue; they are never deleted during normal
// operation.  Each seat belongs to exactly one venue section.
//
// Fields:
//  ID         – primary key identifier.
//  SectionID  – venue section to which this seat belongs.
//  SeatNumber – number of the seat within the section.
//  CreatedAt  – creation timestamp.
type Seat struct {
	ID         uint64    // seats.id
	SectionID  uint64    // seats.section_id
	SeatNumber uint32    // seats.seat_number
	CreatedAt  time.Time // seats.created_at
}

// VenueSection groups seats of a venue into a sellable block
// (e.g. "VIP", "General").  Ticket types may be bound to a
// section so that reservations draw seats from it.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable section name.
//  Capacity  – number of seats in the section.
//  CreatedAt – creation timestamp.
type VenueSection struct {
	ID        uint64    // venue_sections.id
	Name      string    // venue_sections.name
	Capacity  uint32    // venue_sections.capacity
	CreatedAt time.Time // venue_sections.created_at
}
