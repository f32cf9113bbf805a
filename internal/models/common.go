package models

import (
	"time"
)

// EntityKind names a workflow entity for policy scoping and audit records
type EntityKind string

const (
	KindUser      EntityKind = "user"
	KindWarehouse EntityKind = "warehouse"
	KindQuote     EntityKind = "quote"
	KindBooking   EntityKind = "booking"
	KindCargo     EntityKind = "cargo"
	KindDelivery  EntityKind = "delivery"
	KindInvoice   EntityKind = "invoice"
)

// Actor is the authenticated caller resolved from the bearer token
type Actor struct {
	ID       string   `json:"id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email,omitempty"`
	IsActive bool     `json:"is_active"`
}

// ListParams carries query-string filters shared by every list endpoint
type ListParams struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status    string `form:"status"`      // comma separated
	Search    string `form:"search"`      // case-insensitive substring
	DateFrom  string `form:"date_from"`   // YYYY-MM-DD
	DateTo    string `form:"date_to"`     // YYYY-MM-DD
	SortBy    string `form:"sort_by"`     // created_at, updated_at, status
	SortOrder string `form:"sort_order"`  // asc, desc
	BookingID string `form:"booking_id"`
}

// Normalize applies listing defaults
func (p *ListParams) Normalize() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
	if p.SortBy == "" {
		p.SortBy = "created_at"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

// IsDefault reports whether the caller asked for the plain first page with no filters
func (p ListParams) IsDefault() bool {
	return p.Page == 1 && p.Limit == 20 && p.Status == "" && p.Search == "" &&
		p.DateFrom == "" && p.DateTo == "" && p.BookingID == "" &&
		p.SortBy == "created_at" && p.SortOrder == "desc"
}

// ListResponse is the paginated envelope for list endpoints
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewListResponse builds a page envelope
func NewListResponse[T any](items []T, total int, p ListParams) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return ListResponse[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// DashboardStats aggregates workflow counts for the staff dashboard
type DashboardStats struct {
	QuotesByStatus     map[string]int `json:"quotes_by_status"`
	BookingsByStatus   map[string]int `json:"bookings_by_status"`
	CargoByStatus      map[string]int `json:"cargo_by_status"`
	DeliveriesByStatus map[string]int `json:"deliveries_by_status"`
	InvoicesByStatus   map[string]int `json:"invoices_by_status"`
	PaidRevenue        float64        `json:"paid_revenue"`
	OutstandingAmount  float64        `json:"outstanding_amount"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

// NewDashboardStats returns stats with initialized maps
func NewDashboardStats() *DashboardStats {
	return &DashboardStats{
		QuotesByStatus:     make(map[string]int),
		BookingsByStatus:   make(map[string]int),
		CargoByStatus:      make(map[string]int),
		DeliveriesByStatus: make(map[string]int),
		InvoicesByStatus:   make(map[string]int),
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
