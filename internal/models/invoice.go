package models

import "time"

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceStatuses lists every invoice status
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled,
}

// Invoice is a billable document tied to a booking
type Invoice struct {
	ID            string        `json:"id" db:"id"`
	BookingID     string        `json:"booking_id" db:"booking_id"`
	CustomerID    string        `json:"customer_id" db:"customer_id"`
	InvoiceNumber string        `json:"invoice_number" db:"invoice_number"`
	Amount        float64       `json:"amount" db:"amount"`
	Status        InvoiceStatus `json:"status" db:"status"`
	DueDate       time.Time     `json:"due_date" db:"due_date"`
	PaidAt        *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	PaymentMethod *string       `json:"payment_method,omitempty" db:"payment_method"`
	TransactionID *string       `json:"transaction_id,omitempty" db:"transaction_id"`
	Notes         *string       `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

func (i *Invoice) OwnerID() string     { return i.CustomerID }
func (i *Invoice) StatusValue() string { return string(i.Status) }
func (i *Invoice) AssigneeID() string  { return "" }

// CreateInvoiceRequest drafts an invoice for a booking
type CreateInvoiceRequest struct {
	BookingID string    `json:"booking_id" binding:"required"`
	Amount    *float64  `json:"amount,omitempty"`
	DueDate   time.Time `json:"due_date" binding:"required"`
	Notes     *string   `json:"notes,omitempty"`
}

// MarkPaidRequest records a staff-confirmed payment
type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
	TransactionID string `json:"transaction_id"`
}

// PayInvoiceRequest is the customer-facing payment; no gateway is contacted
type PayInvoiceRequest struct {
	PaymentMethod  string            `json:"payment_method" binding:"required"`
	PaymentDetails map[string]string `json:"payment_details,omitempty"`
}

// InvoiceOverrideRequest is the administrative patch for any invoice field
type InvoiceOverrideRequest struct {
	Amount  *float64   `json:"amount,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Status  *string    `json:"status,omitempty"`
	Notes   *string    `json:"notes,omitempty"`
}
