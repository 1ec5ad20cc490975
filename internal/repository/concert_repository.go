package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/concert-ticket-reservation/internal/model"
)

// ConcertRepo provides read access to concerts.  Concert CRUD lives in
// a different service; the reservation core only needs existence
// checks and display fields.
type ConcertRepo struct {
	db *sql.DB
}

// NewConcertRepo returns a new ConcertRepo bound to the given database.
func NewConcertRepo(db *sql.DB) *ConcertRepo { return &ConcertRepo{db: db} }

// GetByIDTx loads a concert inside the given transaction.  It returns
// ErrConcertNotFound when no row exists.
func (r *ConcertRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Concert, error) {
	const q = `SELECT id, title, date, created_at FROM concerts WHERE id = ?`
	var c model.Concert
	var date time.Time
	err := tx.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Title, &date, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrConcertNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Date = date.UTC()
	return &c, nil
}

// ExistsTx reports whether a concert with the given id exists.
func (r *ConcertRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	const q = `SELECT 1 FROM concerts WHERE id = ?`
	var one int
	err := tx.QueryRowContext(ctx, q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
