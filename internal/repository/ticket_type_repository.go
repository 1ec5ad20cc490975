package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/concert-ticket-reservation/internal/model"
)

// TicketTypeRepo provides CRUD for ticket types and the guarded
// capacity mutations used by the reservation flow.  The available
// counter must never go negative: decrements carry a precondition in
// the UPDATE itself so that a lost race shows up as zero rows
// affected instead of a negative balance.
type TicketTypeRepo struct {
	db *sql.DB
}

// NewTicketTypeRepo returns a new TicketTypeRepo bound to the given database.
func NewTicketTypeRepo(db *sql.DB) *TicketTypeRepo { return &TicketTypeRepo{db: db} }

// ListByConcert returns all ticket types for a concert ordered by
// price ascending.  Used by the public catalogue endpoint; no
// transaction required.
func (r *TicketTypeRepo) ListByConcert(ctx context.Context, concertID uint64) ([]model.TicketType, error) {
	const q = `SELECT id, concert_id, section_id, name, price, available, created_at, updated_at
	           FROM ticket_types WHERE concert_id = ? ORDER BY price ASC`
	rows, err := r.db.QueryContext(ctx, q, concertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make([]model.TicketType, 0)
	for rows.Next() {
		var t model.TicketType
		var sectionID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.ConcertID, &sectionID, &t.Name, &t.Price, &t.Available, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if sectionID.Valid {
			sid := uint64(sectionID.Int64)
			t.SectionID = &sid
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

// GetForConcertTx loads the ticket type with the given id scoped to a
// concert, locking the row for the remainder of the transaction so
// concurrent reservations serialize on the capacity counter.  It
// returns ErrTicketTypeNotFound when the pair does not match.
func (r *TicketTypeRepo) GetForConcertTx(ctx context.Context, tx *sql.Tx, id, concertID uint64) (*model.TicketType, error) {
	const q = `SELECT id, concert_id, section_id, name, price, available, created_at, updated_at
	           FROM ticket_types WHERE id = ? AND concert_id = ? FOR UPDATE`
	var t model.TicketType
	var sectionID sql.NullInt64
	err := tx.QueryRowContext(ctx, q, id, concertID).Scan(
		&t.ID, &t.ConcertID, &sectionID, &t.Name, &t.Price, &t.Available, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTicketTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	if sectionID.Valid {
		sid := uint64(sectionID.Int64)
		t.SectionID = &sid
	}
	return &t, nil
}

// DecrementAvailableTx reduces the remaining capacity by quantity.
// The WHERE clause re-checks the balance so the counter cannot go
// negative even if the earlier read raced; it returns the number of
// rows affected (0 means the precondition failed).
func (r *TicketTypeRepo) DecrementAvailableTx(ctx context.Context, tx *sql.Tx, id uint64, quantity uint32) (int64, error) {
	const q = `UPDATE ticket_types SET available = available - ? WHERE id = ? AND available >= ?`
	res, err := tx.ExecContext(ctx, q, quantity, id, quantity)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// IncrementAvailableTx restores capacity released by the expiration
// reaper, symmetric to DecrementAvailableTx.
func (r *TicketTypeRepo) IncrementAvailableTx(ctx context.Context, tx *sql.Tx, id uint64, quantity uint32) error {
	const q = `UPDATE ticket_types SET available = available + ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, quantity, id)
	return err
}

// Create inserts a new ticket type for a concert and populates the
// generated id and timestamps on the passed model.
func (r *TicketTypeRepo) Create(ctx context.Context, t *model.TicketType) error {
	const q = `INSERT INTO ticket_types (concert_id, section_id, name, price, available) VALUES (?, ?, ?, ?, ?)`
	var sectionID interface{}
	if t.SectionID != nil {
		sectionID = *t.SectionID
	}
	res, err := r.db.ExecContext(ctx, q, t.ConcertID, sectionID, t.Name, t.Price, t.Available)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM ticket_types WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// Update applies plain field changes to an existing ticket type.  It
// returns ErrTicketTypeNotFound when the id does not exist.
func (r *TicketTypeRepo) Update(ctx context.Context, t *model.TicketType) error {
	const q = `UPDATE ticket_types SET section_id = ?, name = ?, price = ?, available = ? WHERE id = ?`
	var sectionID interface{}
	if t.SectionID != nil {
		sectionID = *t.SectionID
	}
	res, err := r.db.ExecContext(ctx, q, sectionID, t.Name, t.Price, t.Available, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op
		// update; distinguish with an existence probe.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM ticket_types WHERE id = ?`, t.ID).Scan(&one); err == sql.ErrNoRows {
			return ErrTicketTypeNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// GetByID loads a ticket type by id without concert scoping.  It
// returns ErrTicketTypeNotFound when no row exists.
func (r *TicketTypeRepo) GetByID(ctx context.Context, id uint64) (*model.TicketType, error) {
	const q = `SELECT id, concert_id, section_id, name, price, available, created_at, updated_at
	           FROM ticket_types WHERE id = ?`
	var t model.TicketType
	var sectionID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.ConcertID, &sectionID, &t.Name, &t.Price, &t.Available, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTicketTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	if sectionID.Valid {
		sid := uint64(sectionID.Int64)
		t.SectionID = &sid
	}
	return &t, nil
}

// Delete removes a ticket type.  It returns ErrTicketTypeNotFound
// when the id does not exist.
func (r *TicketTypeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ticket_types WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketTypeNotFound
	}
	return nil
}
