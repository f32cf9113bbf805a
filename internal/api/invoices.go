package api

import (
	"net/http"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateInvoice handles POST /api/invoices
func (h *Handler) CreateInvoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	inv, err := h.engine.CreateInvoice(ctx, actor, req)
	h.respond(c, http.StatusCreated, "Invoice created successfully", inv, err)
}

// GetInvoices handles GET /api/invoices
func (h *Handler) GetInvoices(c *gin.Context) {
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

	resp, err := h.engine.ListInvoices(ctx, actor, params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handler) GetInvoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	inv, err := h.engine.GetInvoice(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Invoice retrieved successfully", inv, err)
}

// SendInvoice handles POST /api/invoices/:id/send
func (h *Handler) SendInvoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	inv, err := h.engine.SendInvoice(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Invoice sent", inv, err)
}

// MarkInvoicePaid handles POST /api/invoices/:id/mark-paid
func (h *Handler) MarkInvoicePaid(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.MarkPaidRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	inv, err := h.engine.MarkInvoicePaid(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Invoice marked as paid", inv, err)
}

// MarkInvoiceOverdue handles POST /api/invoices/:id/mark-overdue
func (h *Handler) MarkInvoiceOverdue(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	inv, err := h.engine.MarkInvoiceOverdue(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Invoice marked as overdue", inv, err)
}

// PayInvoice handles POST /api/invoices/:id/pay
func (h *Handler) PayInvoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.PayInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	inv, err := h.engine.PayInvoice(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Payment recorded successfully", inv, err)
}

// CancelInvoice handles POST /api/invoices/:id/cancel
func (h *Handler) CancelInvoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	inv, err := h.engine.CancelInvoice(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Invoice cancelled", inv, err)
}

// DeleteInvoice handles DELETE /api/invoices/:id
func (h *Handler) DeleteInvoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	err := h.engine.DeleteInvoice(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Invoice deleted successfully", nil, err)
}

// OverrideInvoice handles PUT /api/invoices/:id (admin)
func (h *Handler) OverrideInvoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.InvoiceOverrideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	inv, err := h.engine.OverrideInvoice(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Invoice updated successfully", inv, err)
}
