package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/concert-ticket-reservation/internal/model"
)

// StatusRepo is the status registry: it resolves symbolic lifecycle
// states such as ("seat", "available") to the stable identifiers used
// in status_id columns.  The status_general table is read-only at
// runtime.  All lookups run inside the caller's transaction so that
// repeated lookups observe the same snapshot; the repository never
// caches mappings across transactions since reference data could
// change between calls otherwise.
type StatusRepo struct {
	db *sql.DB
}

// NewStatusRepo returns a new StatusRepo bound to the given database.
func NewStatusRepo(db *sql.DB) *StatusRepo { return &StatusRepo{db: db} }

// SeatStatusSet holds the identifiers of every seat status, resolved
// once per transaction.  Having the full set up front avoids repeated
// lookups while classifying seats.
type SeatStatusSet struct {
	Available uint64
	InCart    uint64
	Reserved  uint64
	Occupied  uint64
}

// ReservationStatusSet holds the identifiers of every reservation
// status, resolved once per transaction.
type ReservationStatusSet struct {
	Held      uint64
	Confirmed uint64
	Expired   uint64
}

// ResolveTx maps a (domain, description) pair to its identifier within
// the given transaction.  It returns ErrStatusNotFound when the pair
// is absent.  The lookup has no side effects.
func (r *StatusRepo) ResolveTx(ctx context.Context, tx *sql.Tx, domain, description string) (uint64, error) {
	const q = `SELECT id FROM status_general WHERE domain = ? AND description = ? AND active = 1`
	var id uint64
	err := tx.QueryRowContext(ctx, q, domain, description).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrStatusNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SeatStatusesTx resolves all seat statuses in one pass.  Any missing
// row yields ErrStatusNotFound.
func (r *StatusRepo) SeatStatusesTx(ctx context.Context, tx *sql.Tx) (SeatStatusSet, error) {
	var set SeatStatusSet
	targets := []struct {
		desc string
		dst  *uint64
	}{
		{model.SeatAvailable, &set.Available},
		{model.SeatInCart, &set.InCart},
		{model.SeatReserved, &set.Reserved},
		{model.SeatOccupied, &set.Occupied},
	}
	for _, t := range targets {
		id, err := r.ResolveTx(ctx, tx, model.StatusDomainSeat, t.desc)
		if err != nil {
			return SeatStatusSet{}, err
		}
		*t.dst = id
	}
	return set, nil
}

// ReservationStatusesTx resolves all reservation statuses in one pass.
func (r *StatusRepo) ReservationStatusesTx(ctx context.Context, tx *sql.Tx) (ReservationStatusSet, error) {
	var set ReservationStatusSet
	targets := []struct {
		desc string
		dst  *uint64
	}{
		{model.ReservationHeld, &set.Held},
		{model.ReservationConfirmed, &set.Confirmed},
		{model.ReservationExpired, &set.Expired},
	}
	for _, t := range targets {
		id, err := r.ResolveTx(ctx, tx, model.StatusDomainReservation, t.desc)
		if err != nil {
			return ReservationStatusSet{}, err
		}
		*t.dst = id
	}
	return set, nil
}
