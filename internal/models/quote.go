package models

import "time"

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusPending    QuoteStatus = "pending"
	QuoteStatusProcessing QuoteStatus = "processing"
	QuoteStatusQuoted     QuoteStatus = "quoted"
	QuoteStatusApproved   QuoteStatus = "approved"
	QuoteStatusRejected   QuoteStatus = "rejected"
)

// QuoteStatuses lists every quote status
var QuoteStatuses = []QuoteStatus{
	QuoteStatusPending, QuoteStatusProcessing, QuoteStatusQuoted, QuoteStatusApproved, QuoteStatusRejected,
}

// Quote is a customer's storage request awaiting pricing and approval
type Quote struct {
	ID                  string      `json:"id" db:"id"`
	CustomerID          string      `json:"customer_id" db:"customer_id"`
	StorageType         StorageType `json:"storage_type" db:"storage_type"`
	RequiredSpace       float64     `json:"required_space" db:"required_space"`
	PreferredLocation   string      `json:"preferred_location" db:"preferred_location"`
	Duration            string      `json:"duration" db:"duration"`
	SpecialRequirements *string     `json:"special_requirements,omitempty" db:"special_requirements"`
	Status              QuoteStatus `json:"status" db:"status"`
	AssignedTo          *string     `json:"assigned_to,omitempty" db:"assigned_to"`
	FinalPrice          *float64    `json:"final_price,omitempty" db:"final_price"`
	WarehouseID         *string     `json:"warehouse_id,omitempty" db:"warehouse_id"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

func (q *Quote) OwnerID() string     { return q.CustomerID }
func (q *Quote) StatusValue() string { return string(q.Status) }
func (q *Quote) AssigneeID() string  { return deref(q.AssignedTo) }

// CreateQuoteRequest is submitted by a customer; any customer_id in the body is ignored
type CreateQuoteRequest struct {
	StorageType         StorageType `json:"storage_type" binding:"required"`
	RequiredSpace       float64     `json:"required_space" binding:"required,gt=0"`
	PreferredLocation   string      `json:"preferred_location" binding:"required"`
	Duration            string      `json:"duration" binding:"required"`
	SpecialRequirements *string     `json:"special_requirements,omitempty"`
}

// AssignQuoteRequest hands a quote to a staff member
type AssignQuoteRequest struct {
	AssignedTo string `json:"assigned_to" binding:"required"`
}

// ApproveQuoteRequest prices a quote against a warehouse
type ApproveQuoteRequest struct {
	FinalPrice  float64 `json:"final_price" binding:"required,gt=0"`
	WarehouseID string  `json:"warehouse_id" binding:"required"`
}

// RejectRequest carries an optional free-text reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// QuoteOverrideRequest is the administrative patch for any quote field
type QuoteOverrideRequest struct {
	StorageType         *StorageType `json:"storage_type,omitempty"`
	RequiredSpace       *float64     `json:"required_space,omitempty"`
	PreferredLocation   *string      `json:"preferred_location,omitempty"`
	Duration            *string      `json:"duration,omitempty"`
	SpecialRequirements *string      `json:"special_requirements,omitempty"`
	Status              *string      `json:"status,omitempty"`
	AssignedTo          *string      `json:"assigned_to,omitempty"`
	FinalPrice          *float64     `json:"final_price,omitempty"`
	WarehouseID         *string      `json:"warehouse_id,omitempty"`
}

// PriceEstimate is the advisory output of the pricing calculator
type PriceEstimate struct {
	QuoteID        string  `json:"quote_id"`
	WarehouseID    string  `json:"warehouse_id"`
	RequiredSpace  float64 `json:"required_space"`
	PricePerSqFt   float64 `json:"price_per_sq_ft"`
	DurationMonths int     `json:"duration_months"`
	Multiplier     float64 `json:"multiplier"`
	EstimatedPrice float64 `json:"estimated_price"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
