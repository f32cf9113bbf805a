package db

import (
	"context"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

const warehouseColumns = `id, name, location, storage_type, total_space, available_space, price_per_sq_ft, is_active, created_at, updated_at`

func scanWarehouse(s scanner) (models.Warehouse, error) {
	var w models.Warehouse
	err := s.Scan(&w.ID, &w.Name, &w.Location, &w.StorageType, &w.TotalSpace, &w.AvailableSpace,
		&w.PricePerSqFt, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func (db *Database) CreateWarehouse(ctx context.Context, w *models.Warehouse) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO warehouses (id, name, location, storage_type, total_space, available_space,
			price_per_sq_ft, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		w.ID, w.Name, w.Location, string(w.StorageType), w.TotalSpace, w.AvailableSpace,
		w.PricePerSqFt, w.IsActive, w.CreatedAt, w.UpdatedAt)
	return translate(err)
}

func (db *Database) GetWarehouse(ctx context.Context, id string) (*models.Warehouse, error) {
	w, err := scanWarehouse(db.Pool.QueryRow(ctx, "SELECT "+warehouseColumns+" FROM warehouses WHERE id = $1", id))
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (db *Database) ListWarehouses(ctx context.Context, f store.WarehouseFilter) ([]models.Warehouse, error) {
	w := &where{}
	if f.ActiveOnly {
		w.conditions = append(w.conditions, "is_active = TRUE")
	}
	if f.StorageType != "" {
		w.and("storage_type = %s", f.StorageType)
	}
	w.search(f.Search, "name", "location")
	items, _, err := listPage(ctx, db, "warehouses", warehouseColumns, w, store.Filter{SortOrder: "asc"}, scanWarehouse)
	return items, err
}

// UpdateWarehouse writes descriptive fields only. Space columns move through
// ReserveSpace and ReleaseSpace.
func (db *Database) UpdateWarehouse(ctx context.Context, w *models.Warehouse) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE warehouses SET name = $2, location = $3, price_per_sq_ft = $4, is_active = $5, updated_at = $6
		WHERE id = $1`,
		w.ID, w.Name, w.Location, w.PricePerSqFt, w.IsActive, w.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (db *Database) ReserveSpace(ctx context.Context, warehouseID string, amount float64) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE warehouses SET available_space = available_space - $2, updated_at = NOW()
		WHERE id = $1 AND available_space >= $2`,
		warehouseID, amount)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		// the row exists, so the guard failed
		err := db.casMiss(ctx, "warehouses", warehouseID)
		if err == store.ErrStatusConflict {
			return store.ErrInsufficientSpace
		}
		return err
	}
	return nil
}

func (db *Database) ReleaseSpace(ctx context.Context, warehouseID string, amount float64) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE warehouses SET available_space = LEAST(total_space, available_space + $2), updated_at = NOW()
		WHERE id = $1`,
		warehouseID, amount)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
