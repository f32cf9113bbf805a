package api

import (
	"net/http"
	"strconv"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
	"github.com/gin-gonic/gin"
)

// GetWarehouses handles GET /api/warehouses
func (h *Handler) GetWarehouses(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	f := store.WarehouseFilter{
		StorageType: c.Query("storage_type"),
		Search:      c.Query("search"),
		ActiveOnly:  c.Query("include_inactive") != "true",
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	items, err := h.engine.ListWarehouses(ctx, actor, f)
	h.respond(c, http.StatusOK, "Warehouses retrieved successfully", items, err)
}

// GetWarehouse handles GET /api/warehouses/:id
func (h *Handler) GetWarehouse(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	w, err := h.engine.GetWarehouse(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "Warehouse retrieved successfully", w, err)
}

// CheckAvailability handles GET /api/warehouses/:id/availability?space=n
func (h *Handler) CheckAvailability(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	space, err := strconv.ParseFloat(c.Query("space"), 64)
	if err != nil || space <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid space",
			Message: "space must be a positive number",
		})
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	resp, err := h.engine.CheckAvailability(ctx, actor, c.Param("id"), space)
	h.respond(c, http.StatusOK, "Availability checked", resp, err)
}

// CreateWarehouse handles POST /api/warehouses (admin)
func (h *Handler) CreateWarehouse(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.WarehouseCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	w, err := h.engine.CreateWarehouse(ctx, actor, req)
	h.respond(c, http.StatusCreated, "Warehouse created successfully", w, err)
}

// UpdateWarehouse handles PUT /api/warehouses/:id (admin)
func (h *Handler) UpdateWarehouse(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.WarehouseUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	w, err := h.engine.UpdateWarehouse(ctx, actor, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Warehouse updated successfully", w, err)
}

// GetDashboardStats handles GET /api/dashboard/stats
func (h *Handler) GetDashboardStats(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	stats, err := h.engine.DashboardStats(ctx, actor)
	h.respond(c, http.StatusOK, "Dashboard statistics retrieved", stats, err)
}
