package api

import (
	"context"
	"net/http"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateCargo handles POST /api/cargo
func (h *Handler) CreateCargo(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.CreateCargoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	cargo, err := h.engine.CreateCargo(ctx, actor, req)
	h.respond(c, http.StatusCreated, "Cargo details submitted successfully", cargo, err)
}

// GetCargoList handles GET /api/cargo
func (h *Handler) GetCargoList(c *gin.Context) {
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

	resp, err := h.engine.ListCargo(ctx, actor, params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCargo handles GET /api/cargo/:id
func (h *Handler) GetCargo(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	cargo, err := h.engine.GetCargo(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Cargo details retrieved successfully", cargo, err)
}

type cargoAction func(ctx context.Context, actor models.Actor, id string) (*models.CargoDispatchDetail, error)

func (h *Handler) cargoTransition(action cargoAction, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := h.actor(c)
		if !ok {
			return
		}
		ctx, cancel := h.reqContext(c)
		defer cancel()

		cargo, err := action(ctx, actor, c.Param("id"))
		h.respond(c, http.StatusOK, message, cargo, err)
	}
}

// RejectCargo handles POST /api/cargo/:id/reject
func (h *Handler) RejectCargo(c *gin.Context) {
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

	cargo, err := h.engine.RejectCargo(ctx, actor, c.Param("id"), req.Reason)
	h.respond(c, http.StatusOK, "Cargo details rejected", cargo, err)
}

// OverrideCargo handles PUT /api/cargo/:id (admin)
func (h *Handler) OverrideCargo(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.CargoOverrideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	cargo, err := h.engine.OverrideCargo(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Cargo details updated successfully", cargo, err)
}
