// Package api exposes the booking workflow over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/accounts"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/workflow"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports store health for /ready
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles HTTP requests
type Handler struct {
	engine   *workflow.Engine
	accounts *accounts.Service
	store    Pinger
	logger   *zap.Logger
	timeout  time.Duration
}

// NewHandler creates a new handler
func NewHandler(engine *workflow.Engine, accountSvc *accounts.Service, store Pinger, logger *zap.Logger, timeout time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		engine:   engine,
		accounts: accountSvc,
		store:    store,
		logger:   logger.Named("api"),
		timeout:  timeout,
	}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "booking-service",
		"timestamp": time.Now().UTC(),
	})
}

// Ready handles GET /ready
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "Not ready", Message: "store is not configured"})
		return
	}
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "Not ready", Message: "store is unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) reqContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// actor returns the authenticated caller or writes a 401
func (h *Handler) actor(c *gin.Context) (models.Actor, bool) {
	actor, ok := GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Please provide a valid authorization token",
		})
	}
	return actor, ok
}

func (h *Handler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request data",
			Message: err.Error(),
		})
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body
func (h *Handler) bindOptionalJSON(c *gin.Context, dest interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.bindJSON(c, dest)
}

func (h *Handler) bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return false
	}
	return true
}

var errorTitles = map[apperr.Kind]string{
	apperr.KindValidation:    "Invalid request",
	apperr.KindNotFound:      "Not found",
	apperr.KindAuthorization: "Forbidden",
	apperr.KindPrecondition:  "Precondition failed",
}

// respondError maps an application error onto the error envelope.
// Unexpected errors are logged and never echoed to the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnexpected {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, models.ErrorResponse{
			Error:   "Internal server error",
			Message: "An unexpected error occurred, please try again later",
		})
		return
	}
	title := errorTitles[kind]
	if code := apperr.CodeOf(err); code != "" {
		title = code
	}
	c.JSON(status, models.ErrorResponse{Error: title, Message: err.Error()})
}

// respond writes the success envelope, or the error when err is set
func (h *Handler) respond(c *gin.Context, status int, message string, data interface{}, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, models.SuccessResponse{Message: message, Data: data})
}

// requestMeta captures the caller's address and headers for the audit trail
func requestMeta(c *gin.Context) accounts.Meta {
	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		switch http.CanonicalHeaderKey(k) {
		case "Authorization", "Cookie":
			continue
		}
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return accounts.Meta{IP: c.ClientIP(), Headers: headers}
}
