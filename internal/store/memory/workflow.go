package memory

import (
	"context"
	"fmt"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

// Warehouses

func (s *Store) CreateWarehouse(ctx context.Context, w *models.Warehouse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.warehouses[w.ID] = &cp
	return nil
}

func (s *Store) GetWarehouse(ctx context.Context, id string) (*models.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.warehouses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *Store) ListWarehouses(ctx context.Context, f store.WarehouseFilter) ([]models.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, _ := list(s.warehouses, store.Filter{Search: f.Search, SortOrder: "asc"}, func(w *models.Warehouse) (row, bool) {
		if f.ActiveOnly && !w.IsActive {
			return row{}, false
		}
		if f.StorageType != "" && string(w.StorageType) != f.StorageType {
			return row{}, false
		}
		return row{createdAt: w.CreatedAt, updatedAt: w.UpdatedAt, text: []string{w.Name, w.Location}}, true
	})
	return items, nil
}

func (s *Store) UpdateWarehouse(ctx context.Context, w *models.Warehouse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.warehouses[w.ID]
	if !ok {
		return store.ErrNotFound
	}
	cp := *w
	// available space is owned by Reserve/Release
	cp.AvailableSpace = existing.AvailableSpace
	s.warehouses[w.ID] = &cp
	return nil
}

func (s *Store) ReserveSpace(ctx context.Context, warehouseID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.warehouses[warehouseID]
	if !ok {
		return store.ErrNotFound
	}
	if w.AvailableSpace < amount {
		return store.ErrInsufficientSpace
	}
	w.AvailableSpace -= amount
	return nil
}

func (s *Store) ReleaseSpace(ctx context.Context, warehouseID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.warehouses[warehouseID]
	if !ok {
		return store.ErrNotFound
	}
	w.AvailableSpace += amount
	if w.AvailableSpace > w.TotalSpace {
		w.AvailableSpace = w.TotalSpace
	}
	return nil
}

// Quotes

func (s *Store) CreateQuote(ctx context.Context, q *models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *q
	s.quotes[q.ID] = &cp
	return nil
}

func (s *Store) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *Store) ListQuotes(ctx context.Context, f store.Filter) ([]models.Quote, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, total := list(s.quotes, f, func(q *models.Quote) (row, bool) {
		return row{
			customerID: q.CustomerID,
			assignedTo: str(q.AssignedTo),
			status:     string(q.Status),
			createdAt:  q.CreatedAt,
			updatedAt:  q.UpdatedAt,
			text:       []string{q.ID, q.PreferredLocation, string(q.StorageType), str(q.SpecialRequirements)},
		}, true
	})
	return items, total, nil
}

func (s *Store) UpdateQuote(ctx context.Context, q *models.Quote, prev models.QuoteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.quotes[q.ID]
	if !ok {
		return store.ErrNotFound
	}
	if existing.Status != prev {
		return store.ErrStatusConflict
	}
	cp := *q
	s.quotes[q.ID] = &cp
	return nil
}

// Bookings

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) ListBookings(ctx context.Context, f store.Filter) ([]models.Booking, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, total := list(s.bookings, f, func(b *models.Booking) (row, bool) {
		return row{
			customerID: b.CustomerID,
			status:     string(b.Status),
			createdAt:  b.CreatedAt,
			updatedAt:  b.UpdatedAt,
			text:       []string{b.ID, b.QuoteID, b.WarehouseID},
		}, true
	})
	return items, total, nil
}

func (s *Store) UpdateBooking(ctx context.Context, b *models.Booking, prev models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.bookings[b.ID]
	if !ok {
		return store.ErrNotFound
	}
	if existing.Status != prev {
		return store.ErrStatusConflict
	}
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

// Cargo

func (s *Store) CreateCargo(ctx context.Context, c *models.CargoDispatchDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.cargo[c.ID] = &cp
	return nil
}

func (s *Store) GetCargo(ctx context.Context, id string) (*models.CargoDispatchDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cargo[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListCargo(ctx context.Context, f store.Filter) ([]models.CargoDispatchDetail, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, total := list(s.cargo, f, func(c *models.CargoDispatchDetail) (row, bool) {
		return row{
			customerID: c.CustomerID,
			bookingID:  c.BookingID,
			status:     string(c.Status),
			createdAt:  c.CreatedAt,
			updatedAt:  c.UpdatedAt,
			text:       []string{c.ID, c.ItemDescription, str(c.SpecialHandling)},
		}, true
	})
	return items, total, nil
}

func (s *Store) UpdateCargo(ctx context.Context, c *models.CargoDispatchDetail, prev models.CargoStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.cargo[c.ID]
	if !ok {
		return store.ErrNotFound
	}
	if existing.Status != prev {
		return store.ErrStatusConflict
	}
	cp := *c
	s.cargo[c.ID] = &cp
	return nil
}

// Deliveries

func (s *Store) CreateDelivery(ctx context.Context, d *models.DeliveryRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.deliveries {
		if existing.TrackingNumber == d.TrackingNumber {
			return store.ErrDuplicate
		}
	}
	cp := *d
	s.deliveries[d.ID] = &cp
	return nil
}

func (s *Store) GetDelivery(ctx context.Context, id string) (*models.DeliveryRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deliveries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Store) ListDeliveries(ctx context.Context, f store.Filter) ([]models.DeliveryRequest, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, total := list(s.deliveries, f, func(d *models.DeliveryRequest) (row, bool) {
		return row{
			customerID: d.CustomerID,
			bookingID:  d.BookingID,
			status:     string(d.Status),
			createdAt:  d.CreatedAt,
			updatedAt:  d.UpdatedAt,
			text:       []string{d.ID, d.TrackingNumber, d.DeliveryAddress, str(d.AssignedDriver)},
		}, true
	})
	return items, total, nil
}

func (s *Store) UpdateDelivery(ctx context.Context, d *models.DeliveryRequest, prev models.DeliveryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.deliveries[d.ID]
	if !ok {
		return store.ErrNotFound
	}
	if existing.Status != prev {
		return store.ErrStatusConflict
	}
	cp := *d
	// tracking numbers are assigned once
	cp.TrackingNumber = existing.TrackingNumber
	s.deliveries[d.ID] = &cp
	return nil
}

// Invoices

func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return store.ErrDuplicate
		}
	}
	cp := *inv
	s.invoices[inv.ID] = &cp
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *Store) ListInvoices(ctx context.Context, f store.Filter) ([]models.Invoice, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, total := list(s.invoices, f, func(inv *models.Invoice) (row, bool) {
		if f.DueBefore != nil && !inv.DueDate.Before(*f.DueBefore) {
			return row{}, false
		}
		return row{
			customerID: inv.CustomerID,
			bookingID:  inv.BookingID,
			status:     string(inv.Status),
			createdAt:  inv.CreatedAt,
			updatedAt:  inv.UpdatedAt,
			text:       []string{inv.ID, inv.InvoiceNumber, str(inv.Notes)},
		}, true
	})
	return items, total, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *models.Invoice, prev models.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.invoices[inv.ID]
	if !ok {
		return store.ErrNotFound
	}
	if existing.Status != prev {
		return store.ErrStatusConflict
	}
	cp := *inv
	cp.InvoiceNumber = existing.InvoiceNumber
	s.invoices[inv.ID] = &cp
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

func (s *Store) NextInvoiceSequence(ctx context.Context, period string) (int, error) {
	if len(period) != 6 {
		return 0, fmt.Errorf("invalid invoice period %q", period)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoiceSeq[period]++
	return s.invoiceSeq[period], nil
}

// Stats

func (s *Store) CountByStatus(ctx context.Context, kind models.EntityKind) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	switch kind {
	case models.KindQuote:
		for _, q := range s.quotes {
			counts[string(q.Status)]++
		}
	case models.KindBooking:
		for _, b := range s.bookings {
			counts[string(b.Status)]++
		}
	case models.KindCargo:
		for _, c := range s.cargo {
			counts[string(c.Status)]++
		}
	case models.KindDelivery:
		for _, d := range s.deliveries {
			counts[string(d.Status)]++
		}
	case models.KindInvoice:
		for _, inv := range s.invoices {
			counts[string(inv.Status)]++
		}
	default:
		return nil, fmt.Errorf("no status counts for %s", kind)
	}
	return counts, nil
}

func (s *Store) InvoiceTotals(ctx context.Context) (float64, float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var paid, outstanding float64
	for _, inv := range s.invoices {
		switch inv.Status {
		case models.InvoiceStatusPaid:
			paid += inv.Amount
		case models.InvoiceStatusSent, models.InvoiceStatusOverdue:
			outstanding += inv.Amount
		}
	}
	return paid, outstanding, nil
}
