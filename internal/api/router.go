package api

import (
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires middleware and routes onto a gin engine
func NewRouter(h *Handler, jwtSecret string, logger *zap.Logger, origins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(logging.JSONLogger(logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(origins))

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", h.Ready)
	router.GET("/health", h.Health)

	// Public self-registration
	router.POST("/api/register", h.Register)

	apiGroup := router.Group("/api")
	apiGroup.Use(AuthMiddleware(jwtSecret))
	{
		quotes := apiGroup.Group("/quotes")
		quotes.POST("", h.CreateQuote)
		quotes.GET("", h.GetQuotes)
		quotes.GET("/:id", h.GetQuote)
		quotes.PUT("/:id", h.OverrideQuote)
		quotes.GET("/:id/price", h.CalculatePrice)
		quotes.POST("/:id/assign", h.AssignQuote)
		quotes.POST("/:id/approve", h.ApproveQuote)
		quotes.POST("/:id/reject", h.RejectQuote)
		quotes.POST("/:id/accept", h.AcceptQuote)

		bookings := apiGroup.Group("/bookings")
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.GetBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.OverrideBooking)
		bookings.POST("/:id/confirm", h.bookingTransition(h.engine.ConfirmBooking, "Booking confirmed"))
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/approve", h.bookingTransition(h.engine.ApproveBooking, "Booking approved"))
		bookings.POST("/:id/reject", h.RejectBooking)
		bookings.POST("/:id/activate", h.bookingTransition(h.engine.ActivateBooking, "Booking activated"))
		bookings.POST("/:id/complete", h.bookingTransition(h.engine.CompleteBooking, "Booking completed"))

		cargo := apiGroup.Group("/cargo")
		cargo.POST("", h.CreateCargo)
		cargo.GET("", h.GetCargoList)
		cargo.GET("/:id", h.GetCargo)
		cargo.PUT("/:id", h.OverrideCargo)
		cargo.POST("/:id/approve", h.cargoTransition(h.engine.ApproveCargo, "Cargo details approved"))
		cargo.POST("/:id/reject", h.RejectCargo)
		cargo.POST("/:id/process", h.cargoTransition(h.engine.ProcessCargo, "Cargo processing started"))
		cargo.POST("/:id/complete", h.cargoTransition(h.engine.CompleteCargo, "Cargo dispatch completed"))

		deliveries := apiGroup.Group("/deliveries")
		deliveries.POST("", h.CreateDelivery)
		deliveries.GET("", h.GetDeliveries)
		deliveries.GET("/:id", h.GetDelivery)
		deliveries.PUT("/:id", h.OverrideDelivery)
		deliveries.GET("/:id/track", h.TrackDelivery)
		deliveries.POST("/:id/schedule", h.ScheduleDelivery)
		deliveries.POST("/:id/assign-driver", h.AssignDriver)
		deliveries.POST("/:id/dispatch", h.DispatchDelivery)
		deliveries.POST("/:id/complete", h.CompleteDelivery)

		invoices := apiGroup.Group("/invoices")
		invoices.POST("", h.CreateInvoice)
		invoices.GET("", h.GetInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id", h.OverrideInvoice)
		invoices.DELETE("/:id", h.DeleteInvoice)
		invoices.POST("/:id/send", h.SendInvoice)
		invoices.POST("/:id/mark-paid", h.MarkInvoicePaid)
		invoices.POST("/:id/mark-overdue", h.MarkInvoiceOverdue)
		invoices.POST("/:id/pay", h.PayInvoice)
		invoices.POST("/:id/cancel", h.CancelInvoice)

		warehouses := apiGroup.Group("/warehouses")
		warehouses.GET("", h.GetWarehouses)
		warehouses.POST("", h.CreateWarehouse)
		warehouses.GET("/:id", h.GetWarehouse)
		warehouses.PUT("/:id", h.UpdateWarehouse)
		warehouses.GET("/:id/availability", h.CheckAvailability)

		apiGroup.GET("/dashboard/stats", h.GetDashboardStats)

		apiGroup.GET("/me", h.GetMe)
		apiGroup.PUT("/me", h.UpdateMe)

		users := apiGroup.Group("/users")
		users.GET("", h.GetUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.POST("/:id/deactivate", h.DeactivateUser)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "booking-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
