package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReservationRepo provides persistence for reservations and their
// seat assignments.  Reservations group one or more concert seats
// held by a single user; the seats claimed under a reservation live
// in the reservation_seats table.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationRecord mirrors the schema of the reservations table.  It
// is used internally by the repository when constructing or scanning
// rows.  Business logic should use the model.Reservation type instead.
type ReservationRecord struct {
	ID           uint64
	UserID       uint64
	ConcertID    uint64
	TicketTypeID uint64
	StatusID     uint64
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// ReservationSeatRecord mirrors the reservation_seats table.  Only
// fields needed for insertion are exposed.
type ReservationSeatRecord struct {
	ReservationID uint64
	SeatID        uint64
	ConcertSeatID uint64
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction.  It populates the generated ID and CreatedAt on the
// provided record.  The caller must commit or roll back the
// transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *ReservationRecord) error {
	const q = `INSERT INTO reservations (user_id, concert_id, ticket_type_id, status_id, expires_at)
	           VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.UserID, res.ConcertID, res.TicketTypeID, res.StatusID,
		res.ExpiresAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT created_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt)
}

// CreateSeatsBulkTx inserts multiple reservation_seats rows in a
// single statement.  The caller must supply the reservation ID in
// each record.  Passing an empty slice has no effect and returns nil.
func (r *ReservationRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []ReservationSeatRecord) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_seats (reservation_id, seat_id, concert_seat_id) VALUES `
	args := make([]interface{}, 0, len(seats)*3)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, s.ReservationID, s.SeatID, s.ConcertSeatID)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CountActiveSeatsTx returns the total number of seats the user holds
// across reservations whose status is one of statusIDs (held and
// confirmed, for the per-user quota).  The count runs inside the
// caller's transaction so it reads the same snapshot the subsequent
// insert writes into.
func (r *ReservationRepo) CountActiveSeatsTx(ctx context.Context, tx *sql.Tx, userID uint64, statusIDs []uint64) (int, error) {
	if len(statusIDs) == 0 {
		return 0, nil
	}
	query := `SELECT COUNT(rs.id)
	          FROM reservations res
	          JOIN reservation_seats rs ON rs.reservation_id = res.id
	          WHERE res.user_id = ? AND res.status_id IN (` + placeholders(len(statusIDs)) + `)`
	args := make([]interface{}, 0, len(statusIDs)+1)
	args = append(args, userID)
	for _, id := range statusIDs {
		args = append(args, id)
	}
	var count int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SeatHeldByUserTx reports whether the given concert seat is claimed
// by a reservation in heldStatusID belonging to userID.  The
// classifier uses this to tell "already held by you" apart from
// "held by another user" for seats in the reserved status.
func (r *ReservationRepo) SeatHeldByUserTx(ctx context.Context, tx *sql.Tx, concertSeatID, userID, heldStatusID uint64) (bool, error) {
	const q = `SELECT 1
	           FROM reservation_seats rs
	           JOIN reservations res ON res.id = rs.reservation_id
	           WHERE rs.concert_seat_id = ? AND res.user_id = ? AND res.status_id = ?
	           LIMIT 1`
	var one int
	err := tx.QueryRowContext(ctx, q, concertSeatID, userID, heldStatusID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReservationDetail encapsulates a reservation along with its concert
// and the seats claimed under it.  It is returned by ListByUser for
// display to customers.
type ReservationDetail struct {
	ID           uint64  `json:"id"`
	ConcertID    uint64  `json:"concert_id"`
	ConcertTitle string  `json:"concert_title"`
	ConcertDate  string  `json:"concert_date"`
	TicketTypeID uint64  `json:"ticket_type_id"`
	Status       string  `json:"status"`
	ExpiresAt    string  `json:"expires_at"`
	CreatedAt    string  `json:"created_at"`
	Seats        []struct {
		SeatID     uint64 `json:"seat_id"`
		SeatNumber uint32 `json:"seat_number"`
	} `json:"seats"`
}

// ListByUser returns all reservations for the given user along with
// concert, status and seat details, ordered by creation time
// descending (newest first).  When no reservations exist, an empty
// slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT res.id, res.concert_id, c.title, c.date, res.ticket_type_id, sg.description,
	                  res.expires_at, res.created_at
	           FROM reservations res
	           JOIN concerts c ON c.id = res.concert_id
	           JOIN status_general sg ON sg.id = res.status_id
	           WHERE res.user_id = ?
	           ORDER BY res.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d ReservationDetail
		var date, expiresAt, createdAt time.Time
		if err := rows.Scan(&d.ID, &d.ConcertID, &d.ConcertTitle, &date, &d.TicketTypeID, &d.Status, &expiresAt, &createdAt); err != nil {
			return nil, err
		}
		d.ConcertDate = date.UTC().Format(time.RFC3339)
		d.ExpiresAt = expiresAt.UTC().Format(time.RFC3339)
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		d.Seats = []struct {
			SeatID     uint64 `json:"seat_id"`
			SeatNumber uint32 `json:"seat_number"`
		}{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	// Populate seats for all reservations in a single query.
	ids := make([]interface{}, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	seatQuery := `SELECT rs.reservation_id, rs.seat_id, se.seat_number
	              FROM reservation_seats rs
	              JOIN seats se ON se.id = rs.seat_id
	              WHERE rs.reservation_id IN (` + placeholders(len(ids)) + `)
	              ORDER BY rs.reservation_id, se.seat_number`
	srows, err := r.db.QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var rid, sid uint64
		var seatNumber uint32
		if err := srows.Scan(&rid, &sid, &seatNumber); err != nil {
			return nil, err
		}
		idx, ok := index[rid]
		if !ok {
			continue
		}
		details[idx].Seats = append(details[idx].Seats, struct {
			SeatID     uint64 `json:"seat_id"`
			SeatNumber uint32 `json:"seat_number"`
		}{SeatID: sid, SeatNumber: seatNumber})
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ExpiredReservation is a held reservation past its deadline together
// with the concert seats it claims, as collected by the reaper.
type ExpiredReservation struct {
	ID             uint64
	TicketTypeID   uint64
	ConcertSeatIDs []uint64
}

// FindExpiredTx returns all reservations still in heldStatusID whose
// expires_at is strictly before now, each with its claimed concert
// seat ids.  Running the query inside the reaper's transaction makes
// the reap idempotent: a second invocation with the same cutoff finds
// nothing because the first already moved the rows out of held.
func (r *ReservationRepo) FindExpiredTx(ctx context.Context, tx *sql.Tx, heldStatusID uint64, now time.Time) ([]ExpiredReservation, error) {
	const q = `SELECT res.id, res.ticket_type_id, rs.concert_seat_id
	           FROM reservations res
	           JOIN reservation_seats rs ON rs.reservation_id = res.id
	           WHERE res.status_id = ? AND res.expires_at < ?
	           ORDER BY res.id`
	rows, err := tx.QueryContext(ctx, q, heldStatusID, now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	expired := make([]ExpiredReservation, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var id, ticketTypeID, concertSeatID uint64
		if err := rows.Scan(&id, &ticketTypeID, &concertSeatID); err != nil {
			return nil, err
		}
		idx, ok := index[id]
		if !ok {
			idx = len(expired)
			index[id] = idx
			expired = append(expired, ExpiredReservation{ID: id, TicketTypeID: ticketTypeID})
		}
		expired[idx].ConcertSeatIDs = append(expired[idx].ConcertSeatIDs, concertSeatID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expired, nil
}

// MarkExpiredBulkTx transitions the given reservations to
// expiredStatusID in one statement.
func (r *ReservationRepo) MarkExpiredBulkTx(ctx context.Context, tx *sql.Tx, reservationIDs []uint64, expiredStatusID uint64) error {
	if len(reservationIDs) == 0 {
		return nil
	}
	query := `UPDATE reservations SET status_id = ? WHERE id IN (` + placeholders(len(reservationIDs)) + `)`
	args := make([]interface{}, 0, len(reservationIDs)+1)
	args = append(args, expiredStatusID)
	for _, id := range reservationIDs {
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteSeatsByReservationsTx removes the reservation_seats rows of
// the given reservations.  The join rows are disposable once the
// status transition is durable.
func (r *ReservationRepo) DeleteSeatsByReservationsTx(ctx context.Context, tx *sql.Tx, reservationIDs []uint64) error {
	if len(reservationIDs) == 0 {
		return nil
	}
	query := `DELETE FROM reservation_seats WHERE reservation_id IN (` + placeholders(len(reservationIDs)) + `)`
	args := make([]interface{}, 0, len(reservationIDs))
	for _, id := range reservationIDs {
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
