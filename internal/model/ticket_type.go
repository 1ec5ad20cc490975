package model

import "time"

// TicketType is a sellable ticket category for a concert,
// optionally bound to a venue section.  Available is a
// remaining-capacity counter: it is decremented inside the same
// transaction that assigns seats and restored when the reaper
// releases an expired hold.  It must never go negative.
//
// Fields:
//  ID        – primary key identifier.
//  ConcertID – concert this ticket type belongs to.
//  SectionID – section seats are drawn from (nullable; ticket
//              types without a section cannot be used for
//              seat-level reservations).
//  Name      – display name of the category.
//  Price     – price per seat in the smallest currency unit.
//  Available – remaining sellable capacity.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type TicketType struct {
	ID        uint64    // ticket_types.id
	ConcertID uint64    // ticket_types.concert_id
	SectionID *uint64   // ticket_types.section_id (nullable)
	Name      string    // ticket_types.name
	Price     uint32    // ticket_types.price
	Available uint32    // ticket_types.available
	CreatedAt time.Time // ticket_types.created_at
	UpdatedAt time.Time // ticket_types.updated_at
}
