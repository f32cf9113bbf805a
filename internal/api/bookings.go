package api

import (
	"context"
	"net/http"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateBooking handles POST /api/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.CreateBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	b, err := h.engine.CreateBooking(ctx, actor, req)
	h.respond(c, http.StatusCreated, "Booking created successfully", b, err)
}

// GetBookings handles GET /api/bookings
func (h *Handler) GetBookings(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var params models.ListParams
	if !h.bindQuery(c, &params) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	resp, err := h.engine.ListBookings(ctx, actor, params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetBooking handles GET /api/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	b, err := h.engine.GetBooking(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Booking retrieved successfully", b, err)
}

type bookingAction func(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)

// bookingTransition adapts a body-less booking transition to a handler
func (h *Handler) bookingTransition(action bookingAction, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := h.actor(c)
		if !ok {
			return
		}
		ctx, cancel := h.reqContext(c)
		defer cancel()

		b, err := action(ctx, actor, c.Param("id"))
		h.respond(c, http.StatusOK, message, b, err)
	}
}

// CancelBooking handles POST /api/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.CancelRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	b, err := h.engine.CancelBooking(ctx, actor, c.Param("id"), req.Reason)
	h.respond(c, http.StatusOK, "Booking cancelled", b, err)
}

// RejectBooking handles POST /api/bookings/:id/reject
func (h *Handler) RejectBooking(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.RejectRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	b, err := h.engine.RejectBooking(ctx, actor, c.Param("id"), req.Reason)
	h.respond(c, http.StatusOK, "Booking rejected", b, err)
}

// OverrideBooking handles PUT /api/bookings/:id (admin)
func (h *Handler) OverrideBooking(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.BookingOverrideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	b, err := h.engine.OverrideBooking(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Booking updated successfully", b, err)
}
