// Package store declares the persistence contract used by the workflow engine.
// internal/db implements it on PostgreSQL and internal/store/memory in process.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrStatusConflict    = errors.New("record status changed concurrently")
	ErrInsufficientSpace = errors.New("insufficient warehouse space")
	ErrDuplicate         = errors.New("duplicate record")
)

// Filter selects records for list and count operations. Zero values mean no
// constraint; Statuses is a membership test.
type Filter struct {
	CustomerID string
	AssignedTo string
	BookingID  string
	Statuses   []string
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
	DueBefore  *time.Time
	SortBy     string
	SortOrder  string
	Limit      int
	Offset     int
}

// UserFilter selects accounts for the admin user list
type UserFilter struct {
	Role     string
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}

// WarehouseFilter selects warehouses
type WarehouseFilter struct {
	StorageType string
	ActiveOnly  bool
	Search      string
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, int, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type WarehouseStore interface {
	CreateWarehouse(ctx context.Context, w *models.Warehouse) error
	GetWarehouse(ctx context.Context, id string) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context, f WarehouseFilter) ([]models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, w *models.Warehouse) error
	// ReserveSpace decrements available space only if enough remains,
	// as a single atomic step. Returns ErrInsufficientSpace otherwise.
	ReserveSpace(ctx context.Context, warehouseID string, amount float64) error
	// ReleaseSpace gives space back, never above the warehouse total.
	ReleaseSpace(ctx context.Context, warehouseID string, amount float64) error
}

// Update methods below are compare-and-set on the previous status: when the
// stored status no longer equals prev they return ErrStatusConflict.

type QuoteStore interface {
	CreateQuote(ctx context.Context, q *models.Quote) error
	GetQuote(ctx context.Context, id string) (*models.Quote, error)
	ListQuotes(ctx context.Context, f Filter) ([]models.Quote, int, error)
	UpdateQuote(ctx context.Context, q *models.Quote, prev models.QuoteStatus) error
}

type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, f Filter) ([]models.Booking, int, error)
	UpdateBooking(ctx context.Context, b *models.Booking, prev models.BookingStatus) error
}

type CargoStore interface {
	CreateCargo(ctx context.Context, c *models.CargoDispatchDetail) error
	GetCargo(ctx context.Context, id string) (*models.CargoDispatchDetail, error)
	ListCargo(ctx context.Context, f Filter) ([]models.CargoDispatchDetail, int, error)
	UpdateCargo(ctx context.Context, c *models.CargoDispatchDetail, prev models.CargoStatus) error
}

type DeliveryStore interface {
	CreateDelivery(ctx context.Context, d *models.DeliveryRequest) error
	GetDelivery(ctx context.Context, id string) (*models.DeliveryRequest, error)
	ListDeliveries(ctx context.Context, f Filter) ([]models.DeliveryRequest, int, error)
	UpdateDelivery(ctx context.Context, d *models.DeliveryRequest, prev models.DeliveryStatus) error
}

type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, f Filter) ([]models.Invoice, int, error)
	UpdateInvoice(ctx context.Context, inv *models.Invoice, prev models.InvoiceStatus) error
	DeleteInvoice(ctx context.Context, id string) error
	// NextInvoiceSequence atomically increments and returns the counter for
	// a YYYYMM period. The first call for a period returns 1.
	NextInvoiceSequence(ctx context.Context, period string) (int, error)
}

type StatsStore interface {
	CountByStatus(ctx context.Context, kind models.EntityKind) (map[string]int, error)
	InvoiceTotals(ctx context.Context) (paid float64, outstanding float64, err error)
}

// Store is the full persistence surface
type Store interface {
	UserStore
	WarehouseStore
	QuoteStore
	BookingStore
	CargoStore
	DeliveryStore
	InvoiceStore
	StatsStore
	Ping(ctx context.Context) error
	Close()
}

// FilterFromParams converts list query parameters into a store filter.
// Status filtering is resolved separately by the access policy.
func FilterFromParams(p models.ListParams) (Filter, error) {
	p.Normalize()
	f := Filter{
		BookingID: p.BookingID,
		Search:    strings.TrimSpace(p.Search),
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
		Limit:     p.Limit,
		Offset:    (p.Page - 1) * p.Limit,
	}
	if p.DateFrom != "" {
		t, err := time.Parse("2006-01-02", p.DateFrom)
		if err != nil {
			return f, err
		}
		f.DateFrom = &t
	}
	if p.DateTo != "" {
		t, err := time.Parse("2006-01-02", p.DateTo)
		if err != nil {
			return f, err
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &end
	}
	return f, nil
}

// SplitStatuses parses a comma separated status query value
func SplitStatuses(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
