package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/concert-ticket-reservation/internal/model"
	"github.com/iliyamo/concert-ticket-reservation/internal/repository"
)

// TicketTypeHandler exposes the ticket-type catalogue: a public
// listing per concert and admin-only CRUD.  These are plain field
// operations without reservation invariants, so the handler talks to
// the repository directly.
type TicketTypeHandler struct {
	TicketTypes *repository.TicketTypeRepo
}

// NewTicketTypeHandler constructs a TicketTypeHandler.
func NewTicketTypeHandler(ticketTypes *repository.TicketTypeRepo) *TicketTypeHandler {
	if ticketTypes == nil {
		panic("nil repository passed to NewTicketTypeHandler")
	}
	return &TicketTypeHandler{TicketTypes: ticketTypes}
}

// ticketTypeBody is the request payload shared by create and update.
type ticketTypeBody struct {
	SectionID *uint64 `json:"section_id"`
	Name      string  `json:"name"`
	Price     uint32  `json:"price"`
	Available uint32  `json:"available"`
}

// ListByConcert handles GET /v1/concerts/:id/ticket-types, returning
// the concert's ticket types ordered by price ascending.
func (h *TicketTypeHandler) ListByConcert(c echo.Context) error {
	concertID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	types, err := h.TicketTypes.ListByConcert(c.Request().Context(), concertID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, types)
}

// Create handles POST /v1/admin/concerts/:id/ticket-types.
func (h *TicketTypeHandler) Create(c echo.Context) error {
	concertID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	var body ticketTypeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" || body.Price == 0 || body.Available == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, price and available are required"})
	}
	t := model.TicketType{
		ConcertID: concertID,
		SectionID: body.SectionID,
		Name:      body.Name,
		Price:     body.Price,
		Available: body.Available,
	}
	if err := h.TicketTypes.Create(c.Request().Context(), &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create ticket type"})
	}
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT /v1/admin/ticket-types/:id.  Fields omitted from
// the body keep their current values.
func (h *TicketTypeHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket type id"})
	}
	current, err := h.TicketTypes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTicketTypeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var body ticketTypeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SectionID != nil {
		current.SectionID = body.SectionID
	}
	if body.Name != "" {
		current.Name = body.Name
	}
	if body.Price != 0 {
		current.Price = body.Price
	}
	if body.Available != 0 {
		current.Available = body.Available
	}
	if err := h.TicketTypes.Update(c.Request().Context(), current); err != nil {
		if errors.Is(err, repository.ErrTicketTypeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update ticket type"})
	}
	return c.JSON(http.StatusOK, current)
}

// Delete handles DELETE /v1/admin/ticket-types/:id.
func (h *TicketTypeHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket type id"})
	}
	if err := h.TicketTypes.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrTicketTypeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete ticket type"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ticket type deleted"})
}
