package workflow

import (
	"context"
	"strings"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/cache"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/policy"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
	"go.uber.org/zap"
)

// ListWarehouses returns warehouses. The unfiltered list of active
// warehouses is cached.
func (e *Engine) ListWarehouses(ctx context.Context, actor models.Actor, f store.WarehouseFilter) ([]models.Warehouse, error) {
	if err := e.gate(actor, policy.WarehouseRead); err != nil {
		return nil, err
	}
	if f.StorageType != "" && !models.StorageType(f.StorageType).IsValid() {
		return nil, apperr.Validation("invalid storage type %q", f.StorageType)
	}
	if actor.Role != models.RoleAdmin {
		f.ActiveOnly = true
	}
	f.Search = strings.TrimSpace(f.Search)

	cacheable := f.ActiveOnly && f.StorageType == "" && f.Search == ""
	if cacheable {
		var cached []models.Warehouse
		if hit, err := e.cache.GetJSON(ctx, cache.WarehouseListKey, &cached); err != nil {
			e.logger.Warn("Warehouse cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}
	var version int64
	if cacheable {
		v, err := e.cache.Version(ctx, cache.WarehouseListKey)
		if err != nil {
			e.logger.Warn("Warehouse cache version read failed", zap.Error(err))
			cacheable = false
		}
		version = v
	}
	items, err := e.store.ListWarehouses(ctx, f)
	if err != nil {
		return nil, storeErr(err, models.KindWarehouse)
	}
	if items == nil {
		items = []models.Warehouse{}
	}
	if cacheable {
		if _, err := e.cache.SetJSONIfVersion(ctx, cache.WarehouseListKey, items, version); err != nil {
			e.logger.Warn("Warehouse cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (e *Engine) GetWarehouse(ctx context.Context, actor models.Actor, id string) (*models.Warehouse, error) {
	if err := e.gate(actor, policy.WarehouseRead); err != nil {
		return nil, err
	}
	w, err := e.store.GetWarehouse(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindWarehouse)
	}
	return w, nil
}

// CheckAvailability is advisory; booking creation reserves atomically
func (e *Engine) CheckAvailability(ctx context.Context, actor models.Actor, id string, space float64) (*models.AvailabilityResponse, error) {
	if err := e.gate(actor, policy.WarehouseRead); err != nil {
		return nil, err
	}
	return e.ledger.Availability(ctx, id, space)
}

func (e *Engine) CreateWarehouse(ctx context.Context, actor models.Actor, req models.WarehouseCreateRequest) (*models.Warehouse, error) {
	if err := e.gate(actor, policy.WarehouseWrite); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Location) == "" {
		return nil, apperr.Validation("name and location are required")
	}
	if !req.StorageType.IsValid() {
		return nil, apperr.Validation("invalid storage type %q", req.StorageType)
	}
	if req.TotalSpace <= 0 || req.PricePerSqFt <= 0 {
		return nil, apperr.Validation("total space and price per sq ft must be greater than zero")
	}
	now := e.now()
	w := &models.Warehouse{
		ID:             newID(),
		Name:           strings.TrimSpace(req.Name),
		Location:       strings.TrimSpace(req.Location),
		StorageType:    req.StorageType,
		TotalSpace:     req.TotalSpace,
		AvailableSpace: req.TotalSpace,
		PricePerSqFt:   req.PricePerSqFt,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.store.CreateWarehouse(ctx, w); err != nil {
		return nil, storeErr(err, models.KindWarehouse)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindWarehouse, Action: models.ActionCreate, EntityID: w.ID, Entity: w,
	}, cache.WarehouseListKey)
	return w, nil
}

// UpdateWarehouse patches descriptive fields. Space figures belong to the ledger.
func (e *Engine) UpdateWarehouse(ctx context.Context, actor models.Actor, id string, req models.WarehouseUpdateRequest) (*models.Warehouse, error) {
	if err := e.gate(actor, policy.WarehouseWrite); err != nil {
		return nil, err
	}
	w, err := e.store.GetWarehouse(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindWarehouse)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		w.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		if strings.TrimSpace(*req.Location) == "" {
			return nil, apperr.Validation("location must not be empty")
		}
		w.Location = strings.TrimSpace(*req.Location)
	}
	if req.PricePerSqFt != nil {
		if *req.PricePerSqFt <= 0 {
			return nil, apperr.Validation("price per sq ft must be greater than zero")
		}
		w.PricePerSqFt = *req.PricePerSqFt
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	w.UpdatedAt = e.now()
	if err := e.store.UpdateWarehouse(ctx, w); err != nil {
		return nil, storeErr(err, models.KindWarehouse)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindWarehouse, Action: models.ActionOverride, EntityID: w.ID, Entity: w,
	}, cache.WarehouseListKey)
	return w, nil
}
