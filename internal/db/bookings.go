package db

import (
	"context"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

const bookingColumns = `id, quote_id, customer_id, warehouse_id, required_space, status, start_date, end_date,
	total_amount, approved_by_id, cancellation_reason, created_at, updated_at`

func scanBooking(s scanner) (models.Booking, error) {
	var b models.Booking
	err := s.Scan(&b.ID, &b.QuoteID, &b.CustomerID, &b.WarehouseID, &b.RequiredSpace, &b.Status,
		&b.StartDate, &b.EndDate, &b.TotalAmount, &b.ApprovedByID, &b.CancellationReason,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (db *Database) CreateBooking(ctx context.Context, b *models.Booking) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO bookings (id, quote_id, customer_id, warehouse_id, required_space, status, start_date,
			end_date, total_amount, approved_by_id, cancellation_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.QuoteID, b.CustomerID, b.WarehouseID, b.RequiredSpace, string(b.Status), b.StartDate,
		b.EndDate, b.TotalAmount, b.ApprovedByID, b.CancellationReason, b.CreatedAt, b.UpdatedAt)
	return translate(err)
}

func (db *Database) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := scanBooking(db.Pool.QueryRow(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = $1", id))
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (db *Database) ListBookings(ctx context.Context, f store.Filter) ([]models.Booking, int, error) {
	w := filterWhere(f, "", "id", "quote_id", "warehouse_id")
	return listPage(ctx, db, "bookings", bookingColumns, w, f, scanBooking)
}

func (db *Database) UpdateBooking(ctx context.Context, b *models.Booking, prev models.BookingStatus) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE bookings SET warehouse_id = $2, required_space = $3, status = $4, start_date = $5, end_date = $6,
			total_amount = $7, approved_by_id = $8, cancellation_reason = $9, updated_at = $10
		WHERE id = $1 AND status = $11`,
		b.ID, b.WarehouseID, b.RequiredSpace, string(b.Status), b.StartDate, b.EndDate,
		b.TotalAmount, b.ApprovedByID, b.CancellationReason, b.UpdatedAt, string(prev))
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.casMiss(ctx, "bookings", b.ID)
	}
	return nil
}
