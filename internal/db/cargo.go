package db

import (
	"context"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

const cargoColumns = `id, booking_id, customer_id, item_description, quantity, weight, dimensions,
	special_handling, status, approved_by_id, created_at, updated_at`

func scanCargo(s scanner) (models.CargoDispatchDetail, error) {
	var c models.CargoDispatchDetail
	err := s.Scan(&c.ID, &c.BookingID, &c.CustomerID, &c.ItemDescription, &c.Quantity, &c.Weight,
		&c.Dimensions, &c.SpecialHandling, &c.Status, &c.ApprovedByID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (db *Database) CreateCargo(ctx context.Context, c *models.CargoDispatchDetail) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO cargo_dispatch_details (id, booking_id, customer_id, item_description, quantity, weight,
			dimensions, special_handling, status, approved_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.BookingID, c.CustomerID, c.ItemDescription, c.Quantity, c.Weight,
		c.Dimensions, c.SpecialHandling, string(c.Status), c.ApprovedByID, c.CreatedAt, c.UpdatedAt)
	return translate(err)
}

func (db *Database) GetCargo(ctx context.Context, id string) (*models.CargoDispatchDetail, error) {
	c, err := scanCargo(db.Pool.QueryRow(ctx, "SELECT "+cargoColumns+" FROM cargo_dispatch_details WHERE id = $1", id))
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (db *Database) ListCargo(ctx context.Context, f store.Filter) ([]models.CargoDispatchDetail, int, error) {
	w := filterWhere(f, "", "id", "item_description", "special_handling")
	return listPage(ctx, db, "cargo_dispatch_details", cargoColumns, w, f, scanCargo)
}

func (db *Database) UpdateCargo(ctx context.Context, c *models.CargoDispatchDetail, prev models.CargoStatus) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE cargo_dispatch_details SET item_description = $2, quantity = $3, weight = $4, dimensions = $5,
			special_handling = $6, status = $7, approved_by_id = $8, updated_at = $9
		WHERE id = $1 AND status = $10`,
		c.ID, c.ItemDescription, c.Quantity, c.Weight, c.Dimensions,
		c.SpecialHandling, string(c.Status), c.ApprovedByID, c.UpdatedAt, string(prev))
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.casMiss(ctx, "cargo_dispatch_details", c.ID)
	}
	return nil
}
