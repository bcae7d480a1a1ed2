package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jovid1242/cinema-ticketing/internal/config"
	"github.com/jovid1242/cinema-ticketing/internal/middleware"
	"github.com/jovid1242/cinema-ticketing/internal/model"
	"github.com/jovid1242/cinema-ticketing/internal/queue"
	"github.com/jovid1242/cinema-ticketing/internal/repository"
	"github.com/jovid1242/cinema-ticketing/internal/service"
)

// TicketHandler drives the reservation flow: hold a seat, pay for it or
// cancel it, and inspect the result. Every operation carries the caller as
// an Actor; owners and admins pass the ownership check, everyone else gets
// a 403 (or a 404 when the ticket does not exist at all).
type TicketHandler struct {
	Cfg     config.Config
	Tickets *repository.TicketRepo
}

func NewTicketHandler(cfg config.Config, t *repository.TicketRepo) *TicketHandler {
	return &TicketHandler{Cfg: cfg, Tickets: t}
}

type reserveReq struct {
	SessionID  uint64 `json:"session_id"`
	RowNumber  uint32 `json:"row_number"`
	SeatNumber uint32 `json:"seat_number"`
}

// Reserve places a 30 minute hold on one seat. 409 means the seat is held
// or sold; the client should refresh its seat map and pick again.
func (h *TicketHandler) Reserve(c echo.Context) error {
	actor := middleware.Actor(c)
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SessionID == 0 || req.RowNumber == 0 || req.SeatNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id, row_number and seat_number are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.Reserve(ctx, actor.ID, req.SessionID, req.RowNumber, req.SeatNumber)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// List returns the caller's tickets, newest first. Admins see everyone's.
func (h *TicketHandler) List(c echo.Context) error {
	actor := middleware.Actor(c)
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, total, err := h.Tickets.ListForActor(ctx, actor, page, perPage)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, paged(tickets, total, page, perPage))
}

// Get returns one ticket with session, movie and hall details.
func (h *TicketHandler) Get(c echo.Context) error {
	actor := middleware.Actor(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.GetByID(ctx, id, actor)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

type ticketStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus moves a ticket to paid or cancelled. Paying a lapsed hold
// fails with 422 and the hold flips to cancelled; the expiry deadline
// always beats a late payment.
func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	actor := middleware.Actor(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req ticketStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch req.Status {
	case model.TicketPaid:
		t, err := h.Tickets.ConfirmPayment(ctx, id, actor)
		if err != nil {
			return httpError(c, err)
		}
		h.publishPaid(id, actor)
		return c.JSON(http.StatusOK, t)
	case model.TicketCancelled:
		t, err := h.Tickets.Cancel(ctx, id, actor)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, t)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be paid or cancelled"})
	}
}

// Delete cancels a ticket; same rules as PUT with status=cancelled.
func (h *TicketHandler) Delete(c echo.Context) error {
	actor := middleware.Actor(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.Cancel(ctx, id, actor)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// publishPaid emits a TicketPaidEvent in the background. The payment has
// already committed; a broker failure only loses the notification.
func (h *TicketHandler) publishPaid(id uint64, actor model.Actor) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		d, err := h.Tickets.GetByID(ctx, id, actor)
		if err != nil {
			return
		}
		_ = service.PublishTicketPaid(ctx, h.Cfg.AMQPURL, queue.TicketPaidEvent{
			TicketID:   d.ID,
			UserID:     d.UserID,
			SessionID:  d.SessionID,
			MovieTitle: d.MovieTitle,
			HallName:   d.HallName,
			RowNumber:  d.RowNumber,
			SeatNumber: d.SeatNumber,
			StartTime:  d.StartTime.Format(time.RFC3339),
			PriceCents: d.PriceCents,
			PaidAt:     time.Now().UTC().Format(time.RFC3339),
		})
	}()
}
