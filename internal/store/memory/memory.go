// Package memory is an in-process implementation of store.Store. It backs the
// test suites and STORE_DRIVER=memory deployments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

// Store keeps every table in maps guarded by one RWMutex
type Store struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	warehouses map[string]*models.Warehouse
	quotes     map[string]*models.Quote
	bookings   map[string]*models.Booking
	cargo      map[string]*models.CargoDispatchDetail
	deliveries map[string]*models.DeliveryRequest
	invoices   map[string]*models.Invoice
	invoiceSeq map[string]int
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      make(map[string]*models.User),
		warehouses: make(map[string]*models.Warehouse),
		quotes:     make(map[string]*models.Quote),
		bookings:   make(map[string]*models.Booking),
		cargo:      make(map[string]*models.CargoDispatchDetail),
		deliveries: make(map[string]*models.DeliveryRequest),
		invoices:   make(map[string]*models.Invoice),
		invoiceSeq: make(map[string]int),
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() {}

// row describes how to filter and sort one record type
type row struct {
	customerID string
	assignedTo string
	bookingID  string
	status     string
	createdAt  time.Time
	updatedAt  time.Time
	text       []string
}

// list filters, sorts and pages items. describe returns false to drop a
// record before the shared filter runs.
func list[T any](items map[string]*T, f store.Filter, describe func(*T) (row, bool)) ([]T, int) {
	type entry struct {
		v *T
		r row
	}
	var matched []entry
	for _, v := range items {
		r, keep := describe(v)
		if !keep || !matches(r, f) {
			continue
		}
		matched = append(matched, entry{v, r})
	}

	before := func(a, b row) bool {
		switch f.SortBy {
		case "status":
			return a.status < b.status
		case "updated_at":
			return a.updatedAt.Before(b.updatedAt)
		default:
			return a.createdAt.Before(b.createdAt)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if f.SortOrder == "asc" {
			return before(matched[i].r, matched[j].r)
		}
		return before(matched[j].r, matched[i].r)
	})

	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < total {
		end = start + f.Limit
	}
	out := make([]T, 0, end-start)
	for _, e := range matched[start:end] {
		out = append(out, *e.v)
	}
	return out, total
}

func matches(r row, f store.Filter) bool {
	if f.CustomerID != "" && r.customerID != f.CustomerID {
		return false
	}
	if f.AssignedTo != "" && r.assignedTo != f.AssignedTo {
		return false
	}
	if f.BookingID != "" && r.bookingID != f.BookingID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if st == r.status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.DateFrom != nil && r.createdAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.createdAt.After(*f.DateTo) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hit := false
		for _, t := range r.text {
			if strings.Contains(strings.ToLower(t), needle) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lf := store.Filter{Search: f.Search, Limit: f.Limit, Offset: f.Offset}
	items, total := list(s.users, lf, func(u *models.User) (row, bool) {
		if f.Role != "" && string(u.Role) != f.Role {
			return row{}, false
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			return row{}, false
		}
		return row{status: string(u.Role), createdAt: u.CreatedAt, updatedAt: u.UpdatedAt, text: []string{u.Email, u.FullName}}, true
	})
	return items, total, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	for id, existing := range s.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}
