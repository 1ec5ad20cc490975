package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/concert-ticket-reservation/internal/model"
	"github.com/iliyamo/concert-ticket-reservation/internal/queue"
	"github.com/iliyamo/concert-ticket-reservation/internal/repository"
)

const (
	// MaxSeatsPerUser caps the total seats a user may have across
	// held and confirmed reservations.
	MaxSeatsPerUser = 5

	// HoldTTL is how long a hold lasts before the reaper may
	// reclaim it.  Set at creation and never extended.
	HoldTTL = 5 * time.Minute

	// candidateFactor oversizes the candidate seat fetch relative to
	// the requested quantity, so a few blocked candidates do not
	// starve the request.
	candidateFactor = 2

	// publishTimeout bounds the post-commit event publish, which runs
	// on its own context.
	publishTimeout = 5 * time.Second
)

// ConflictChecker is the advisory cross-service guard consulted
// before a reservation commits.  Implementations absorb their own
// failures (fail open) and never surface them to the orchestrator.
type ConflictChecker interface {
	CheckSeats(ctx context.Context, seatIDs []uint64) queue.ConflictResult
}

// EventPublisher delivers the post-commit reservation event.  Errors
// are returned so the orchestrator can log them, but they never
// influence the reservation's outcome.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, event queue.ReservationCreatedEvent) error
}

// The persistence collaborators are consumed through narrow
// interfaces covering exactly the calls the orchestrator makes.  The
// concrete repositories satisfy them; tests substitute stubs.

// StatusRegistry resolves the status catalogue inside a transaction.
type StatusRegistry interface {
	SeatStatusesTx(ctx context.Context, tx *sql.Tx) (repository.SeatStatusSet, error)
	ReservationStatusesTx(ctx context.Context, tx *sql.Tx) (repository.ReservationStatusSet, error)
}

// ConcertStore answers concert existence checks.
type ConcertStore interface {
	ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error)
}

// TicketTypeStore loads ticket types and mutates their capacity.
type TicketTypeStore interface {
	GetForConcertTx(ctx context.Context, tx *sql.Tx, id, concertID uint64) (*model.TicketType, error)
	DecrementAvailableTx(ctx context.Context, tx *sql.Tx, id uint64, quantity uint32) (int64, error)
	IncrementAvailableTx(ctx context.Context, tx *sql.Tx, id uint64, quantity uint32) error
}

// ConcertSeatStore loads seat rows and flips their statuses.
type ConcertSeatStore interface {
	ListBySeatIDsTx(ctx context.Context, tx *sql.Tx, concertID uint64, seatIDs []uint64) ([]repository.ConcertSeatRow, error)
	FindCandidatesTx(ctx context.Context, tx *sql.Tx, concertID, sectionID uint64, statusIDs []uint64, limit int) ([]repository.ConcertSeatRow, error)
	UpdateStatusGuardedTx(ctx context.Context, tx *sql.Tx, concertSeatIDs []uint64, fromStatusIDs []uint64, toStatusID uint64) (int64, error)
	BulkUpdateStatusTx(ctx context.Context, tx *sql.Tx, concertSeatIDs []uint64, statusID uint64) error
}

// ReservationStore persists reservations and their seat assignments.
type ReservationStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, res *repository.ReservationRecord) error
	CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []repository.ReservationSeatRecord) error
	CountActiveSeatsTx(ctx context.Context, tx *sql.Tx, userID uint64, statusIDs []uint64) (int, error)
	SeatHeldByUserTx(ctx context.Context, tx *sql.Tx, concertSeatID, userID, heldStatusID uint64) (bool, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error)
	FindExpiredTx(ctx context.Context, tx *sql.Tx, heldStatusID uint64, now time.Time) ([]repository.ExpiredReservation, error)
	MarkExpiredBulkTx(ctx context.Context, tx *sql.Tx, reservationIDs []uint64, expiredStatusID uint64) error
	DeleteSeatsByReservationsTx(ctx context.Context, tx *sql.Tx, reservationIDs []uint64) error
}

// TicketService is the reservation core.  It owns the transaction
// around every multi-row mutation: all lookups feeding a mutation run
// inside the same transaction as the mutation so they observe one
// consistent snapshot, and no resource other than the transaction is
// held across blocking calls.
type TicketService struct {
	db           *sql.DB
	statuses     StatusRegistry
	concerts     ConcertStore
	ticketTypes  TicketTypeStore
	concertSeats ConcertSeatStore
	reservations ReservationStore
	conflicts    ConflictChecker
	publisher    EventPublisher
}

// NewTicketService constructs the service.  All repository
// dependencies must be non-nil; conflicts and publisher may be nil,
// which disables the advisory check and the event publish
// respectively (both are best-effort collaborators).
func NewTicketService(
	db *sql.DB,
	statuses StatusRegistry,
	concerts ConcertStore,
	ticketTypes TicketTypeStore,
	concertSeats ConcertSeatStore,
	reservations ReservationStore,
	conflicts ConflictChecker,
	publisher EventPublisher,
) *TicketService {
	if db == nil || statuses == nil || concerts == nil || ticketTypes == nil || concertSeats == nil || reservations == nil {
		panic("nil dependency passed to NewTicketService")
	}
	return &TicketService{
		db:           db,
		statuses:     statuses,
		concerts:     concerts,
		ticketTypes:  ticketTypes,
		concertSeats: concertSeats,
		reservations: reservations,
		conflicts:    conflicts,
		publisher:    publisher,
	}
}

// ClassifySeats partitions the candidate seats for a concert into
// allocatable, blocked and warn-but-allocatable from the requesting
// user's point of view.  Seat ids with no concert_seats row for the
// concert are dropped from the result entirely; callers must count
// against the returned sets, not the input.  No ordering is promised
// beyond ascending seat id within each set.
func (s *TicketService) ClassifySeats(ctx context.Context, concertID uint64, seatIDs []uint64, userID uint64) (*SeatClassification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin classify transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	classification, err := s.classifyTx(ctx, tx, concertID, seatIDs, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit classify transaction: %w", err)
	}
	committed = true
	return classification, nil
}

// classifyTx runs the classification inside an existing transaction
// so the orchestrator can reuse it against the snapshot its mutations
// will write into.
func (s *TicketService) classifyTx(ctx context.Context, tx *sql.Tx, concertID uint64, seatIDs []uint64, userID uint64) (*SeatClassification, error) {
	seatStatuses, err := s.statuses.SeatStatusesTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	resStatuses, err := s.statuses.ReservationStatusesTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	rows, err := s.concertSeats.ListBySeatIDsTx(ctx, tx, concertID, seatIDs)
	if err != nil {
		return nil, err
	}
	classification, err := classifyRows(rows, seatStatuses, func(concertSeatID uint64) (bool, error) {
		return s.reservations.SeatHeldByUserTx(ctx, tx, concertSeatID, userID, resStatuses.Held)
	})
	if err != nil {
		return nil, err
	}
	return &classification, nil
}

// ReservationResult is returned by Reserve after a successful commit.
type ReservationResult struct {
	ReservationID  uint64        `json:"reservation_id"`
	ConcertID      uint64        `json:"concert_id"`
	TicketTypeID   uint64        `json:"ticket_type_id"`
	Quantity       int           `json:"quantity"`
	SeatIDs        []uint64      `json:"seat_ids"`
	ConcertSeatIDs []uint64      `json:"concert_seat_ids"`
	SeatNumbers    []uint32      `json:"seat_numbers"`
	ExpiresAt      time.Time     `json:"expires_at"`
	Warnings       []SeatWarning `json:"warnings"`
}

// Reserve validates a hold request, selects concrete seats and
// atomically creates the hold, its seat assignments and the capacity
// decrement.  Preconditions are checked in order, each with its own
// failure mode; any failure rolls back the whole unit of work, so no
// partial seat assignment is ever observable.  After the commit the
// reservation event is published best-effort.
func (s *TicketService) Reserve(ctx context.Context, userID, concertID, ticketTypeID uint64, quantity int) (*ReservationResult, error) {
	// 1. Quantity bounds.
	if quantity < 1 || quantity > MaxSeatsPerUser {
		return nil, &InvalidRequestError{Reason: fmt.Sprintf("quantity must be between 1 and %d", MaxSeatsPerUser)}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reserve transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seatStatuses, err := s.statuses.SeatStatusesTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	resStatuses, err := s.statuses.ReservationStatusesTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	// 2. Per-user quota across held and confirmed reservations.  The
	// count is an unguarded read: two concurrent requests by the same
	// user can both pass it and together land past the cap.  Only the
	// seat status and capacity writes carry write-time guards.
	current, err := s.reservations.CountActiveSeatsTx(ctx, tx, userID, []uint64{resStatuses.Held, resStatuses.Confirmed})
	if err != nil {
		return nil, err
	}
	if current+quantity > MaxSeatsPerUser {
		return nil, &QuotaExceededError{CurrentSeats: current, Requested: quantity, Limit: MaxSeatsPerUser}
	}

	// 3. Ticket type exists for this concert and still has capacity.
	// The row is locked so concurrent reservations serialize here.
	ticketType, err := s.ticketTypes.GetForConcertTx(ctx, tx, ticketTypeID, concertID)
	if err != nil {
		return nil, err
	}
	if ticketType.Available < uint32(quantity) {
		return nil, &InsufficientCapacityError{Available: ticketType.Available, Requested: uint32(quantity)}
	}
	if ticketType.SectionID == nil {
		return nil, &InvalidRequestError{Reason: "ticket type has no section assigned"}
	}

	// 4. Concert exists.
	if exists, err := s.concerts.ExistsTx(ctx, tx, concertID); err != nil {
		return nil, err
	} else if !exists {
		return nil, repository.ErrConcertNotFound
	}

	// 5. Enough allocatable seats in the ticket type's section.  The
	// candidate fetch locks the rows; classification then applies the
	// availability matrix to the same snapshot.
	candidates, err := s.concertSeats.FindCandidatesTx(ctx, tx, concertID, *ticketType.SectionID,
		[]uint64{seatStatuses.Available, seatStatuses.InCart}, quantity*candidateFactor)
	if err != nil {
		return nil, err
	}
	classification, err := classifyRows(candidates, seatStatuses, func(concertSeatID uint64) (bool, error) {
		return s.reservations.SeatHeldByUserTx(ctx, tx, concertSeatID, userID, resStatuses.Held)
	})
	if err != nil {
		return nil, err
	}
	if len(classification.Allocatable) < quantity {
		return nil, &InsufficientSeatsError{Available: len(classification.Allocatable), Requested: quantity}
	}
	chosen := selectSeats(classification.Allocatable, quantity)

	seatIDs := make([]uint64, 0, len(chosen))
	concertSeatIDs := make([]uint64, 0, len(chosen))
	seatNumbers := make([]uint32, 0, len(chosen))
	for _, seat := range chosen {
		seatIDs = append(seatIDs, seat.SeatID)
		concertSeatIDs = append(concertSeatIDs, seat.ConcertSeatID)
		seatNumbers = append(seatNumbers, seat.SeatNumber)
	}

	// 6. Advisory cross-service check on the chosen seats.  The
	// checker fails open on broker trouble, so a non-proceed answer
	// always names concrete conflicting seats.
	if s.conflicts != nil {
		if res := s.conflicts.CheckSeats(ctx, seatIDs); !res.CanProceed {
			return nil, &SeatConflictError{SeatIDs: res.Conflicting}
		}
	}

	// All preconditions hold; mutate.
	expiresAt := time.Now().UTC().Add(HoldTTL)
	record := repository.ReservationRecord{
		UserID:       userID,
		ConcertID:    concertID,
		TicketTypeID: ticketType.ID,
		StatusID:     resStatuses.Held,
		ExpiresAt:    expiresAt,
	}
	if err := s.reservations.CreateTx(ctx, tx, &record); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	seatRecords := make([]repository.ReservationSeatRecord, 0, len(chosen))
	for _, seat := range chosen {
		seatRecords = append(seatRecords, repository.ReservationSeatRecord{
			ReservationID: record.ID,
			SeatID:        seat.SeatID,
			ConcertSeatID: seat.ConcertSeatID,
		})
	}
	if err := s.reservations.CreateSeatsBulkTx(ctx, tx, seatRecords); err != nil {
		return nil, fmt.Errorf("create reservation seats: %w", err)
	}

	// The status flip re-checks the expected current status; a short
	// rows-affected count means a concurrent writer won the row-level
	// race after our candidate read.
	updated, err := s.concertSeats.UpdateStatusGuardedTx(ctx, tx, concertSeatIDs,
		[]uint64{seatStatuses.Available, seatStatuses.InCart}, seatStatuses.Reserved)
	if err != nil {
		return nil, fmt.Errorf("reserve seats: %w", err)
	}
	if updated != int64(len(concertSeatIDs)) {
		return nil, &SeatConflictError{SeatIDs: seatIDs}
	}

	affected, err := s.ticketTypes.DecrementAvailableTx(ctx, tx, ticketType.ID, uint32(quantity))
	if err != nil {
		return nil, fmt.Errorf("decrement capacity: %w", err)
	}
	if affected == 0 {
		return nil, &InsufficientCapacityError{Available: ticketType.Available, Requested: uint32(quantity)}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reserve transaction: %w", err)
	}
	committed = true

	// Post-commit, best-effort: a publish failure is logged and
	// swallowed, never propagated to the caller.  The publish runs on
	// a detached context; the reservation is durable, so a client
	// disconnect after commit must not cancel the event.
	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		event := queue.ReservationCreatedEvent{
			EventID:        uuid.NewString(),
			ReservationID:  record.ID,
			UserID:         userID,
			ConcertID:      concertID,
			TicketTypeID:   ticketType.ID,
			SeatIDs:        seatIDs,
			ConcertSeatIDs: concertSeatIDs,
			Quantity:       uint32(quantity),
			ExpiresAt:      expiresAt.Format(time.RFC3339),
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishReservationCreated(pubCtx, event); err != nil {
			log.Printf("reserve: event publish failed for reservation %d: %v", record.ID, err)
		}
	}

	return &ReservationResult{
		ReservationID:  record.ID,
		ConcertID:      concertID,
		TicketTypeID:   ticketType.ID,
		Quantity:       quantity,
		SeatIDs:        seatIDs,
		ConcertSeatIDs: concertSeatIDs,
		SeatNumbers:    seatNumbers,
		ExpiresAt:      expiresAt,
		Warnings:       classification.Warnings,
	}, nil
}

// ListUserReservations returns the user's reservations with concert,
// status and seat details, newest first.
func (s *TicketService) ListUserReservations(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// ReapExpired releases every held reservation whose expiration
// instant is before now: the claimed concert seats return to
// available, the reservations move to expired, their seat join rows
// are deleted and the ticket-type capacity taken at creation is
// restored.  One transaction covers the whole batch, so a failure
// rolls everything back and the job can simply be retried on its next
// scheduled run.  Idempotent: a second run with the same cutoff finds
// nothing left in held and releases zero.
func (s *TicketService) ReapExpired(ctx context.Context, now time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reap transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seatStatuses, err := s.statuses.SeatStatusesTx(ctx, tx)
	if err != nil {
		return 0, err
	}
	resStatuses, err := s.statuses.ReservationStatusesTx(ctx, tx)
	if err != nil {
		return 0, err
	}

	expired, err := s.reservations.FindExpiredTx(ctx, tx, resStatuses.Held, now)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("commit reap transaction: %w", err)
		}
		committed = true
		return 0, nil
	}

	reservationIDs := make([]uint64, 0, len(expired))
	concertSeatIDs := make([]uint64, 0, len(expired))
	restore := make(map[uint64]uint32)
	for _, res := range expired {
		reservationIDs = append(reservationIDs, res.ID)
		concertSeatIDs = append(concertSeatIDs, res.ConcertSeatIDs...)
		restore[res.TicketTypeID] += uint32(len(res.ConcertSeatIDs))
	}

	if err := s.concertSeats.BulkUpdateStatusTx(ctx, tx, concertSeatIDs, seatStatuses.Available); err != nil {
		return 0, fmt.Errorf("release seats: %w", err)
	}
	if err := s.reservations.MarkExpiredBulkTx(ctx, tx, reservationIDs, resStatuses.Expired); err != nil {
		return 0, fmt.Errorf("expire reservations: %w", err)
	}
	if err := s.reservations.DeleteSeatsByReservationsTx(ctx, tx, reservationIDs); err != nil {
		return 0, fmt.Errorf("delete reservation seats: %w", err)
	}
	for ticketTypeID, quantity := range restore {
		if err := s.ticketTypes.IncrementAvailableTx(ctx, tx, ticketTypeID, quantity); err != nil {
			return 0, fmt.Errorf("restore capacity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reap transaction: %w", err)
	}
	committed = true
	return len(reservationIDs), nil
}
