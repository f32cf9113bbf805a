package models

import "time"

// DeliveryStatus represents the status of a delivery request
type DeliveryStatus string

const (
	DeliveryStatusRequested DeliveryStatus = "requested"
	DeliveryStatusScheduled DeliveryStatus = "scheduled"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
)

// DeliveryStatuses lists every delivery status
var DeliveryStatuses = []DeliveryStatus{
	DeliveryStatusRequested, DeliveryStatusScheduled, DeliveryStatusInTransit, DeliveryStatusDelivered,
}

// Urgency of a delivery request
type Urgency string

const (
	UrgencyStandard Urgency = "standard"
	UrgencyExpress  Urgency = "express"
	UrgencyUrgent   Urgency = "urgent"
)

// IsValid checks if the urgency is known
func (u Urgency) IsValid() bool {
	return u == UrgencyStandard || u == UrgencyExpress || u == UrgencyUrgent
}

// DeliveryRequest is a customer-initiated transport request with tracking
type DeliveryRequest struct {
	ID                  string         `json:"id" db:"id"`
	BookingID           string         `json:"booking_id" db:"booking_id"`
	CustomerID          string         `json:"customer_id" db:"customer_id"`
	DeliveryAddress     string         `json:"delivery_address" db:"delivery_address"`
	PreferredDate       time.Time      `json:"preferred_date" db:"preferred_date"`
	ScheduledDate       *time.Time     `json:"scheduled_date,omitempty" db:"scheduled_date"`
	Urgency             Urgency        `json:"urgency" db:"urgency"`
	Status              DeliveryStatus `json:"status" db:"status"`
	AssignedDriver      *string        `json:"assigned_driver,omitempty" db:"assigned_driver"`
	TrackingNumber      string         `json:"tracking_number" db:"tracking_number"`
	SpecialInstructions *string        `json:"special_instructions,omitempty" db:"special_instructions"`
	DeliveryNotes       *string        `json:"delivery_notes,omitempty" db:"delivery_notes"`
	DeliveredAt         *time.Time     `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

func (d *DeliveryRequest) OwnerID() string     { return d.CustomerID }
func (d *DeliveryRequest) StatusValue() string { return string(d.Status) }
func (d *DeliveryRequest) AssigneeID() string  { return "" }

// CreateDeliveryRequest is submitted by the booking's customer
type CreateDeliveryRequest struct {
	BookingID           string    `json:"booking_id" binding:"required"`
	DeliveryAddress     string    `json:"delivery_address" binding:"required"`
	PreferredDate       time.Time `json:"preferred_date" binding:"required"`
	Urgency             Urgency   `json:"urgency"`
	SpecialInstructions *string   `json:"special_instructions,omitempty"`
}

// ScheduleDeliveryRequest schedules a delivery with a driver
type ScheduleDeliveryRequest struct {
	ScheduledDate  time.Time `json:"scheduled_date" binding:"required"`
	AssignedDriver string    `json:"assigned_driver" binding:"required"`
}

// AssignDriverRequest sets the driver without a status change
type AssignDriverRequest struct {
	AssignedDriver string `json:"assigned_driver" binding:"required"`
}

// CompleteDeliveryRequest closes a delivery with optional notes
type CompleteDeliveryRequest struct {
	DeliveryNotes string `json:"delivery_notes"`
}

// DeliveryOverrideRequest is the administrative patch for any delivery field
type DeliveryOverrideRequest struct {
	DeliveryAddress *string    `json:"delivery_address,omitempty"`
	PreferredDate   *time.Time `json:"preferred_date,omitempty"`
	ScheduledDate   *time.Time `json:"scheduled_date,omitempty"`
	Urgency         *string    `json:"urgency,omitempty"`
	Status          *string    `json:"status,omitempty"`
	AssignedDriver  *string    `json:"assigned_driver,omitempty"`
}

// TrackingInfo is the read-only projection returned by the track operation
type TrackingInfo struct {
	TrackingNumber  string         `json:"tracking_number"`
	Status          DeliveryStatus `json:"status"`
	DeliveryAddress string         `json:"delivery_address"`
	PreferredDate   time.Time      `json:"preferred_date"`
	ScheduledDate   *time.Time     `json:"scheduled_date,omitempty"`
	DeliveredAt     *time.Time     `json:"delivered_at,omitempty"`
	AssignedDriver  *string        `json:"assigned_driver,omitempty"`
	Urgency         Urgency        `json:"urgency"`
}
