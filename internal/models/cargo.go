package models

import "time"

// CargoStatus represents the status of a cargo dispatch record
type CargoStatus string

const (
	CargoStatusSubmitted  CargoStatus = "submitted"
	CargoStatusApproved   CargoStatus = "approved"
	CargoStatusProcessing CargoStatus = "processing"
	CargoStatusCompleted  CargoStatus = "completed"
)

// CargoStatuses lists every cargo status
var CargoStatuses = []CargoStatus{
	CargoStatusSubmitted, CargoStatusApproved, CargoStatusProcessing, CargoStatusCompleted,
}

// CargoDispatchDetail is a physical goods movement tied to a booking
type CargoDispatchDetail struct {
	ID              string      `json:"id" db:"id"`
	BookingID       string      `json:"booking_id" db:"booking_id"`
	CustomerID      string      `json:"customer_id" db:"customer_id"`
	ItemDescription string      `json:"item_description" db:"item_description"`
	Quantity        int         `json:"quantity" db:"quantity"`
	Weight          float64     `json:"weight" db:"weight"`
	Dimensions      string      `json:"dimensions" db:"dimensions"`
	SpecialHandling *string     `json:"special_handling,omitempty" db:"special_handling"`
	Status          CargoStatus `json:"status" db:"status"`
	ApprovedByID    *string     `json:"approved_by_id,omitempty" db:"approved_by_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

func (c *CargoDispatchDetail) OwnerID() string     { return c.CustomerID }
func (c *CargoDispatchDetail) StatusValue() string { return string(c.Status) }
func (c *CargoDispatchDetail) AssigneeID() string  { return "" }

// CreateCargoRequest submits a cargo item for a booking
type CreateCargoRequest struct {
	BookingID       string  `json:"booking_id" binding:"required"`
	ItemDescription string  `json:"item_description" binding:"required"`
	Quantity        int     `json:"quantity" binding:"required,min=1"`
	Weight          float64 `json:"weight" binding:"omitempty,gte=0"`
	Dimensions      string  `json:"dimensions"`
	SpecialHandling *string `json:"special_handling,omitempty"`
}

// CargoOverrideRequest is the administrative patch for any cargo field
type CargoOverrideRequest struct {
	ItemDescription *string  `json:"item_description,omitempty"`
	Quantity        *int     `json:"quantity,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	Dimensions      *string  `json:"dimensions,omitempty"`
	SpecialHandling *string  `json:"special_handling,omitempty"`
	Status          *string  `json:"status,omitempty"`
}
