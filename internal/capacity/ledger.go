// Package capacity accounts for warehouse space held by bookings.
package capacity

import (
	"context"
	"errors"
	"fmt"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
	"go.uber.org/zap"
)

// Backend is the part of the store the ledger writes through
type Backend interface {
	GetWarehouse(ctx context.Context, id string) (*models.Warehouse, error)
	ReserveSpace(ctx context.Context, warehouseID string, amount float64) error
	ReleaseSpace(ctx context.Context, warehouseID string, amount float64) error
}

// Ledger reserves and restores warehouse space
type Ledger struct {
	backend Backend
	logger  *zap.Logger
}

func NewLedger(backend Backend, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{backend: backend, logger: logger.Named("capacity")}
}

// CheckAvailability is advisory only; Reserve is the authoritative step
func (l *Ledger) CheckAvailability(ctx context.Context, warehouseID string, requiredSpace float64) (bool, error) {
	w, err := l.warehouse(ctx, warehouseID)
	if err != nil {
		return false, err
	}
	return w.IsActive && w.AvailableSpace >= requiredSpace, nil
}

// Availability returns the advisory answer together with the current figures
func (l *Ledger) Availability(ctx context.Context, warehouseID string, requiredSpace float64) (*models.AvailabilityResponse, error) {
	if requiredSpace < 0 {
		return nil, apperr.Validation("space must not be negative")
	}
	w, err := l.warehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return &models.AvailabilityResponse{
		WarehouseID:    w.ID,
		RequiredSpace:  requiredSpace,
		AvailableSpace: w.AvailableSpace,
		Available:      w.IsActive && w.AvailableSpace >= requiredSpace,
	}, nil
}

// Reserve atomically takes space from the warehouse or fails with a
// precondition error, leaving the ledger untouched.
func (l *Ledger) Reserve(ctx context.Context, warehouseID string, amount float64) error {
	if amount <= 0 {
		return apperr.Validation("required space must be greater than zero")
	}
	w, err := l.warehouse(ctx, warehouseID)
	if err != nil {
		return err
	}
	if !w.IsActive {
		return apperr.Precondition("warehouse %s is not accepting bookings", warehouseID)
	}
	if err := l.backend.ReserveSpace(ctx, warehouseID, amount); err != nil {
		switch {
		case errors.Is(err, store.ErrInsufficientSpace):
			return apperr.Precondition("insufficient space: warehouse %s cannot hold %.2f sq ft", warehouseID, amount)
		case errors.Is(err, store.ErrNotFound):
			return apperr.NotFound("warehouse")
		}
		return apperr.Unexpected("failed to reserve warehouse space", err)
	}
	l.logger.Info("space reserved", zap.String("warehouse_id", warehouseID), zap.Float64("amount", amount))
	return nil
}

// Release restores space previously reserved
func (l *Ledger) Release(ctx context.Context, warehouseID string, amount float64) error {
	if amount <= 0 {
		return nil
	}
	if err := l.backend.ReleaseSpace(ctx, warehouseID, amount); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("warehouse")
		}
		return apperr.Unexpected("failed to release warehouse space", err)
	}
	l.logger.Info("space released", zap.String("warehouse_id", warehouseID), zap.Float64("amount", amount))
	return nil
}

// Adjust applies a signed delta: negative reserves, positive releases
func (l *Ledger) Adjust(ctx context.Context, warehouseID string, delta float64) error {
	switch {
	case delta < 0:
		return l.Reserve(ctx, warehouseID, -delta)
	case delta > 0:
		return l.Release(ctx, warehouseID, delta)
	default:
		return nil
	}
}

func (l *Ledger) warehouse(ctx context.Context, id string) (*models.Warehouse, error) {
	w, err := l.backend.GetWarehouse(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("warehouse")
		}
		return nil, apperr.Unexpected(fmt.Sprintf("failed to load warehouse %s", id), err)
	}
	return w, nil
}
