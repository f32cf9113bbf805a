package models

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingStatuses lists every booking status
var BookingStatuses = []BookingStatus{
	BookingStatusPending, BookingStatusConfirmed, BookingStatusActive, BookingStatusCompleted, BookingStatusCancelled,
}

// HoldsSpace reports whether a booking in this status still occupies warehouse capacity
func (s BookingStatus) HoldsSpace() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed || s == BookingStatusActive
}

// Booking reserves warehouse space for an accepted quote
type Booking struct {
	ID                 string        `json:"id" db:"id"`
	QuoteID            string        `json:"quote_id" db:"quote_id"`
	CustomerID         string        `json:"customer_id" db:"customer_id"`
	WarehouseID        string        `json:"warehouse_id" db:"warehouse_id"`
	RequiredSpace      float64       `json:"required_space" db:"required_space"`
	Status             BookingStatus `json:"status" db:"status"`
	StartDate          time.Time     `json:"start_date" db:"start_date"`
	EndDate            time.Time     `json:"end_date" db:"end_date"`
	TotalAmount        float64       `json:"total_amount" db:"total_amount"`
	ApprovedByID       *string       `json:"approved_by_id,omitempty" db:"approved_by_id"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

func (b *Booking) OwnerID() string     { return b.CustomerID }
func (b *Booking) StatusValue() string { return string(b.Status) }
func (b *Booking) AssigneeID() string  { return "" }

// CreateBookingRequest is submitted by the quote's customer
type CreateBookingRequest struct {
	QuoteID       string    `json:"quote_id" binding:"required"`
	WarehouseID   string    `json:"warehouse_id"`
	RequiredSpace *float64  `json:"required_space,omitempty"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
	TotalAmount   *float64  `json:"total_amount,omitempty"`
	Status        *string   `json:"status,omitempty"`
}

// CancelRequest carries an optional cancellation reason
type CancelRequest struct {
	Reason string `json:"reason"`
}

// BookingOverrideRequest is the administrative patch for any booking field
type BookingOverrideRequest struct {
	WarehouseID  *string    `json:"warehouse_id,omitempty"`
	Status       *string    `json:"status,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	TotalAmount  *float64   `json:"total_amount,omitempty"`
	ApprovedByID *string    `json:"approved_by_id,omitempty"`
}
