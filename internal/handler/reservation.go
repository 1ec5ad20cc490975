package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/concert-ticket-reservation/internal/repository"
	"github.com/iliyamo/concert-ticket-reservation/internal/service"
)

// TicketService is the reservation core as seen from the HTTP layer.
// It is an interface so handlers can be exercised without a database.
type TicketService interface {
	ClassifySeats(ctx context.Context, concertID uint64, seatIDs []uint64, userID uint64) (*service.SeatClassification, error)
	Reserve(ctx context.Context, userID, concertID, ticketTypeID uint64, quantity int) (*service.ReservationResult, error)
	ListUserReservations(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error)
	ReapExpired(ctx context.Context, now time.Time) (int, error)
}

// ReservationHandler exposes the reservation operations.  All methods
// assume JWT authentication has already run; admin-only routes are
// additionally gated by the role middleware.
type ReservationHandler struct {
	Service TicketService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(svc TicketService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Service: svc}
}

// Reserve handles POST /v1/tickets/reserve.  The body carries the
// concert, ticket type and quantity; the service selects concrete
// seats itself.  On success it returns 201 with the reservation,
// chosen seats, expiry and any soft-conflict warnings.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ConcertID    uint64 `json:"concert_id"`
		TicketTypeID uint64 `json:"ticket_type_id"`
		Quantity     int    `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ConcertID == 0 || body.TicketTypeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "concert_id and ticket_type_id are required"})
	}

	result, err := h.Service.Reserve(c.Request().Context(), userID, body.ConcertID, body.TicketTypeID, body.Quantity)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// ClassifySeats handles POST /v1/tickets/classify.  It reports, for a
// concrete candidate seat set, which seats the user could claim and
// why the rest are blocked.  Unknown seat ids are absent from the
// response.
func (h *ReservationHandler) ClassifySeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ConcertID uint64   `json:"concert_id"`
		SeatIDs   []uint64 `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ConcertID == 0 || len(body.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "concert_id and seat_ids are required"})
	}

	classification, err := h.Service.ClassifySeats(c.Request().Context(), body.ConcertID, body.SeatIDs, userID)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, classification)
}

// ListReservations handles GET /v1/tickets/reservations, returning
// the caller's reservations newest first.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservations, err := h.Service.ListUserReservations(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, reservations)
}

// ReleaseExpired handles POST /v1/admin/tickets/release-expired.  It
// exists for operators and cron fallbacks; the background reaper runs
// the same operation on its own schedule.
func (h *ReservationHandler) ReleaseExpired(c echo.Context) error {
	released, err := h.Service.ReapExpired(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release expired reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"released_reservations": released})
}

// reservationError translates the service error taxonomy into HTTP
// responses carrying the specific, actionable reason.
func reservationError(c echo.Context, err error) error {
	var invalid *service.InvalidRequestError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": invalid.Reason})
	}
	var quota *service.QuotaExceededError
	if errors.As(err, &quota) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          quota.Error(),
			"reserved_seats": quota.CurrentSeats,
			"limit":          quota.Limit,
		})
	}
	var capacity *service.InsufficientCapacityError
	if errors.As(err, &capacity) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     capacity.Error(),
			"available": capacity.Available,
		})
	}
	var seats *service.InsufficientSeatsError
	if errors.As(err, &seats) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     seats.Error(),
			"available": seats.Available,
			"requested": seats.Requested,
		})
	}
	var conflict *service.SeatConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":             "seat conflict",
			"conflicting_seats": conflict.SeatIDs,
		})
	}
	if errors.Is(err, repository.ErrConcertNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
	}
	if errors.Is(err, repository.ErrTicketTypeNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
