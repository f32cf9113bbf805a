package api

import (
	"net/http"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/gin-gonic/gin"
)

// Register handles POST /api/register (public)
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	u, err := h.accounts.Register(ctx, req, requestMeta(c))
	h.respond(c, http.StatusCreated, "Registration received, your account is pending activation", u, err)
}

// GetMe handles GET /api/me
func (h *Handler) GetMe(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	u, err := h.accounts.Me(ctx, actor)
	h.respond(c, http.StatusOK, "Profile retrieved successfully", u, err)
}

// UpdateMe handles PUT /api/me
func (h *Handler) UpdateMe(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.UserUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	u, err := h.accounts.UpdateMe(ctx, actor, req, requestMeta(c))
	h.respond(c, http.StatusOK, "Profile updated successfully", u, err)
}

// GetUsers handles GET /api/users
func (h *Handler) GetUsers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var params models.UserListParams
	if !h.bindQuery(c, &params) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	items, total, err := h.accounts.List(ctx, actor, params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	params.Normalize()
	c.JSON(http.StatusOK, models.NewListResponse(items, total, params.ListParams))
}

// CreateUser handles POST /api/users
func (h *Handler) CreateUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.UserCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	u, err := h.accounts.Create(ctx, actor, req, requestMeta(c))
	h.respond(c, http.StatusCreated, "User created successfully", u, err)
}

// GetUser handles GET /api/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	u, err := h.accounts.Get(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "User retrieved successfully", u, err)
}

// UpdateUser handles PUT /api/users/:id
func (h *Handler) UpdateUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req models.UserUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	u, err := h.accounts.Update(ctx, actor, c.Param("id"), req, requestMeta(c))
	h.respond(c, http.StatusOK, "User updated successfully", u, err)
}

// DeactivateUser handles POST /api/users/:id/deactivate
func (h *Handler) DeactivateUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	u, err := h.accounts.Deactivate(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "User deactivated successfully", u, err)
}

// DeleteUser handles DELETE /api/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.reqContext(c)
	defer cancel()

	err := h.accounts.Delete(ctx, actor, c.Param("id"))
	h.respond(c, http.StatusOK, "User deleted successfully", nil, err)
}
