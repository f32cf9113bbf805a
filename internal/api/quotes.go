package api

import (
	"net/http"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateQuote handles POST /api/quotes
func (h *Handler) CreateQuote(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.CreateQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	q, err := h.engine.CreateQuote(ctx, actor, req)
	h.respond(c, http.StatusCreated, "Quote request submitted successfully", q, err)
}

// GetQuotes handles GET /api/quotes
func (h *Handler) GetQuotes(c *gin.Context) {
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

	resp, err := h.engine.ListQuotes(ctx, actor, params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetQuote handles GET /api/quotes/:id
func (h *Handler) GetQuote(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	q, err := h.engine.GetQuote(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Quote retrieved successfully", q, err)
}

// AssignQuote handles POST /api/quotes/:id/assign
func (h *Handler) AssignQuote(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.AssignQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	q, err := h.engine.AssignQuote(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Quote assigned successfully", q, err)
}

// ApproveQuote handles POST /api/quotes/:id/approve
func (h *Handler) ApproveQuote(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.ApproveQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	q, err := h.engine.ApproveQuote(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Quote approved successfully", q, err)
}

// RejectQuote handles POST /api/quotes/:id/reject
func (h *Handler) RejectQuote(c *gin.Context) {
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

	q, err := h.engine.RejectQuote(ctx, actor, c.Param("id"), req.Reason)
	h.respond(c, http.StatusOK, "Quote rejected", q, err)
}

// AcceptQuote handles POST /api/quotes/:id/accept
func (h *Handler) AcceptQuote(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	q, err := h.engine.AcceptQuote(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Quote accepted", q, err)
}

// CalculatePrice handles GET /api/quotes/:id/price
func (h *Handler) CalculatePrice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	est, err := h.engine.CalculatePrice(ctx, actor, c.Param("id"), c.Query("warehouse_id"))
	h.respond(c, http.StatusOK, "Price calculated successfully", est, err)
}

// OverrideQuote handles PUT /api/quotes/:id (admin)
func (h *Handler) OverrideQuote(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.QuoteOverrideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	q, err := h.engine.OverrideQuote(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Quote updated successfully", q, err)
}
