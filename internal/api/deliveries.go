package api

import (
	"net/http"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateDelivery handles POST /api/deliveries
func (h *Handler) CreateDelivery(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.CreateDeliveryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	d, err := h.engine.CreateDelivery(ctx, actor, req)
	h.respond(c, http.StatusCreated, "Delivery requested successfully", d, err)
}

// GetDeliveries handles GET /api/deliveries
func (h *Handler) GetDeliveries(c *gin.Context) {
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

	resp, err := h.engine.ListDeliveries(ctx, actor, params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDelivery handles GET /api/deliveries/:id
func (h *Handler) GetDelivery(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	d, err := h.engine.GetDelivery(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Delivery retrieved successfully", d, err)
}

// TrackDelivery handles GET /api/deliveries/:id/track
func (h *Handler) TrackDelivery(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	info, err := h.engine.TrackDelivery(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Tracking information retrieved", info, err)
}

// ScheduleDelivery handles POST /api/deliveries/:id/schedule
func (h *Handler) ScheduleDelivery(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.ScheduleDeliveryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	d, err := h.engine.ScheduleDelivery(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Delivery scheduled successfully", d, err)
}

// AssignDriver handles POST /api/deliveries/:id/assign-driver
func (h *Handler) AssignDriver(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.AssignDriverRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	d, err := h.engine.AssignDriver(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Driver assigned successfully", d, err)
}

// DispatchDelivery handles POST /api/deliveries/:id/dispatch
func (h *Handler) DispatchDelivery(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	d, err := h.engine.DispatchDelivery(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Delivery dispatched", d, err)
}

// CompleteDelivery handles POST /api/deliveries/:id/complete
func (h *Handler) CompleteDelivery(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.CompleteDeliveryRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	d, err := h.engine.CompleteDelivery(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Delivery completed", d, err)
}

// OverrideDelivery handles PUT /api/deliveries/:id (admin)
func (h *Handler) OverrideDelivery(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.DeliveryOverrideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	d, err := h.engine.OverrideDelivery(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Delivery updated successfully", d, err)
}
