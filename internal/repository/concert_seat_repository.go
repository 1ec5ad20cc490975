package repository

import (
	"context"
	"database/sql"
	"strings"
)

// ConcertSeatRow is a concert seat joined with its physical seat,
// as loaded for classification and candidate selection.
type ConcertSeatRow struct {
	ID         uint64 // concert_seats.id
	ConcertID  uint64 // concert_seats.concert_id
	SeatID     uint64 // concert_seats.seat_id
	StatusID   uint64 // concert_seats.status_id
	SeatNumber uint32 // seats.seat_number
	SectionID  uint64 // seats.section_id
}

// ConcertSeatRepo encapsulates database operations on concert_seats,
// the unit of contention in the reservation flow.  Status mutations
// are guarded: every UPDATE re-checks the expected current status in
// its WHERE clause so a read-then-write race surfaces as a short
// rows-affected count instead of a silent double allocation.
type ConcertSeatRepo struct {
	db *sql.DB
}

// NewConcertSeatRepo constructs a ConcertSeatRepo given a DB handle.
func NewConcertSeatRepo(db *sql.DB) *ConcertSeatRepo { return &ConcertSeatRepo{db: db} }

// placeholders returns a "?, ?, ..." list for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// ListBySeatIDsTx loads the concert seat rows for the given concert
// and seat ids, joined with their physical seats.  Seat ids with no
// concert_seats row for this concert are simply not returned: callers
// classifying seats must treat the missing ids as dropped rather than
// assume a row per input id, or quantities will be miscounted.
// Ordering is ascending seat id for deterministic selection.
func (r *ConcertSeatRepo) ListBySeatIDsTx(ctx context.Context, tx *sql.Tx, concertID uint64, seatIDs []uint64) ([]ConcertSeatRow, error) {
	if len(seatIDs) == 0 {
		return []ConcertSeatRow{}, nil
	}
	query := `SELECT cs.id, cs.concert_id, cs.seat_id, cs.status_id, se.seat_number, se.section_id
	          FROM concert_seats cs
	          JOIN seats se ON se.id = cs.seat_id
	          WHERE cs.concert_id = ? AND cs.seat_id IN (` + placeholders(len(seatIDs)) + `)
	          ORDER BY cs.seat_id ASC`
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, concertID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	return r.queryRows(ctx, tx, query, args...)
}

// FindCandidatesTx returns up to limit concert seats in the given
// section whose status is one of statusIDs, locking the rows for the
// remainder of the transaction.  Rows come back in ascending seat id
// order so that "take the first N" selection is deterministic.
func (r *ConcertSeatRepo) FindCandidatesTx(ctx context.Context, tx *sql.Tx, concertID, sectionID uint64, statusIDs []uint64, limit int) ([]ConcertSeatRow, error) {
	if len(statusIDs) == 0 || limit <= 0 {
		return []ConcertSeatRow{}, nil
	}
	query := `SELECT cs.id, cs.concert_id, cs.seat_id, cs.status_id, se.seat_number, se.section_id
	          FROM concert_seats cs
	          JOIN seats se ON se.id = cs.seat_id
	          WHERE cs.concert_id = ? AND se.section_id = ? AND cs.status_id IN (` + placeholders(len(statusIDs)) + `)
	          ORDER BY cs.seat_id ASC
	          LIMIT ?
	          FOR UPDATE`
	args := make([]interface{}, 0, len(statusIDs)+3)
	args = append(args, concertID, sectionID)
	for _, id := range statusIDs {
		args = append(args, id)
	}
	args = append(args, limit)
	return r.queryRows(ctx, tx, query, args...)
}

// UpdateStatusGuardedTx moves the given concert seats to toStatusID,
// but only rows still in one of fromStatusIDs.  It returns the number
// of rows actually updated; callers must compare it against
// len(concertSeatIDs) and treat a shortfall as a lost race.
func (r *ConcertSeatRepo) UpdateStatusGuardedTx(ctx context.Context, tx *sql.Tx, concertSeatIDs []uint64, fromStatusIDs []uint64, toStatusID uint64) (int64, error) {
	if len(concertSeatIDs) == 0 {
		return 0, nil
	}
	query := `UPDATE concert_seats SET status_id = ?
	          WHERE id IN (` + placeholders(len(concertSeatIDs)) + `)
	          AND status_id IN (` + placeholders(len(fromStatusIDs)) + `)`
	args := make([]interface{}, 0, len(concertSeatIDs)+len(fromStatusIDs)+1)
	args = append(args, toStatusID)
	for _, id := range concertSeatIDs {
		args = append(args, id)
	}
	for _, id := range fromStatusIDs {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BulkUpdateStatusTx unconditionally sets the status of the given
// concert seats.  Used by the reaper when releasing seats whose
// owning reservation has already been verified as expired.
func (r *ConcertSeatRepo) BulkUpdateStatusTx(ctx context.Context, tx *sql.Tx, concertSeatIDs []uint64, statusID uint64) error {
	if len(concertSeatIDs) == 0 {
		return nil
	}
	query := `UPDATE concert_seats SET status_id = ? WHERE id IN (` + placeholders(len(concertSeatIDs)) + `)`
	args := make([]interface{}, 0, len(concertSeatIDs)+1)
	args = append(args, statusID)
	for _, id := range concertSeatIDs {
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func (r *ConcertSeatRepo) queryRows(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) ([]ConcertSeatRow, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ConcertSeatRow, 0)
	for rows.Next() {
		var cs ConcertSeatRow
		if err := rows.Scan(&cs.ID, &cs.ConcertID, &cs.SeatID, &cs.StatusID, &cs.SeatNumber, &cs.SectionID); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
