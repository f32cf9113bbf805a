package db

import (
	"context"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

const quoteColumns = `id, customer_id, storage_type, required_space, preferred_location, duration,
	special_requirements, status, assigned_to, final_price, warehouse_id, created_at, updated_at`

func scanQuote(s scanner) (models.Quote, error) {
	var q models.Quote
	err := s.Scan(&q.ID, &q.CustomerID, &q.StorageType, &q.RequiredSpace, &q.PreferredLocation, &q.Duration,
		&q.SpecialRequirements, &q.Status, &q.AssignedTo, &q.FinalPrice, &q.WarehouseID, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

func (db *Database) CreateQuote(ctx context.Context, q *models.Quote) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO quotes (id, customer_id, storage_type, required_space, preferred_location, duration,
			special_requirements, status, assigned_to, final_price, warehouse_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		q.ID, q.CustomerID, string(q.StorageType), q.RequiredSpace, q.PreferredLocation, q.Duration,
		q.SpecialRequirements, string(q.Status), q.AssignedTo, q.FinalPrice, q.WarehouseID, q.CreatedAt, q.UpdatedAt)
	return translate(err)
}

func (db *Database) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	q, err := scanQuote(db.Pool.QueryRow(ctx, "SELECT "+quoteColumns+" FROM quotes WHERE id = $1", id))
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (db *Database) ListQuotes(ctx context.Context, f store.Filter) ([]models.Quote, int, error) {
	w := filterWhere(f, "assigned_to", "id", "preferred_location", "storage_type", "special_requirements")
	return listPage(ctx, db, "quotes", quoteColumns, w, f, scanQuote)
}

func (db *Database) UpdateQuote(ctx context.Context, q *models.Quote, prev models.QuoteStatus) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE quotes SET storage_type = $2, required_space = $3, preferred_location = $4, duration = $5,
			special_requirements = $6, status = $7, assigned_to = $8, final_price = $9, warehouse_id = $10,
			updated_at = $11
		WHERE id = $1 AND status = $12`,
		q.ID, string(q.StorageType), q.RequiredSpace, q.PreferredLocation, q.Duration,
		q.SpecialRequirements, string(q.Status), q.AssignedTo, q.FinalPrice, q.WarehouseID,
		q.UpdatedAt, string(prev))
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.casMiss(ctx, "quotes", q.ID)
	}
	return nil
}
