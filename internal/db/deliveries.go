package db

import (
	"context"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

const deliveryColumns = `id, booking_id, customer_id, delivery_address, preferred_date, scheduled_date, urgency,
	status, assigned_driver, tracking_number, special_instructions, delivery_notes, delivered_at,
	created_at, updated_at`

func scanDelivery(s scanner) (models.DeliveryRequest, error) {
	var d models.DeliveryRequest
	err := s.Scan(&d.ID, &d.BookingID, &d.CustomerID, &d.DeliveryAddress, &d.PreferredDate, &d.ScheduledDate,
		&d.Urgency, &d.Status, &d.AssignedDriver, &d.TrackingNumber, &d.SpecialInstructions,
		&d.DeliveryNotes, &d.DeliveredAt, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// CreateDelivery returns ErrDuplicate when the tracking number is taken
func (db *Database) CreateDelivery(ctx context.Context, d *models.DeliveryRequest) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO delivery_requests (id, booking_id, customer_id, delivery_address, preferred_date,
			scheduled_date, urgency, status, assigned_driver, tracking_number, special_instructions,
			delivery_notes, delivered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		d.ID, d.BookingID, d.CustomerID, d.DeliveryAddress, d.PreferredDate,
		d.ScheduledDate, string(d.Urgency), string(d.Status), d.AssignedDriver, d.TrackingNumber,
		d.SpecialInstructions, d.DeliveryNotes, d.DeliveredAt, d.CreatedAt, d.UpdatedAt)
	return translate(err)
}

func (db *Database) GetDelivery(ctx context.Context, id string) (*models.DeliveryRequest, error) {
	d, err := scanDelivery(db.Pool.QueryRow(ctx, "SELECT "+deliveryColumns+" FROM delivery_requests WHERE id = $1", id))
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (db *Database) ListDeliveries(ctx context.Context, f store.Filter) ([]models.DeliveryRequest, int, error) {
	w := filterWhere(f, "", "id", "tracking_number", "delivery_address", "assigned_driver")
	return listPage(ctx, db, "delivery_requests", deliveryColumns, w, f, scanDelivery)
}

func (db *Database) UpdateDelivery(ctx context.Context, d *models.DeliveryRequest, prev models.DeliveryStatus) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE delivery_requests SET delivery_address = $2, preferred_date = $3, scheduled_date = $4,
			urgency = $5, status = $6, assigned_driver = $7, special_instructions = $8, delivery_notes = $9,
			delivered_at = $10, updated_at = $11
		WHERE id = $1 AND status = $12`,
		d.ID, d.DeliveryAddress, d.PreferredDate, d.ScheduledDate,
		string(d.Urgency), string(d.Status), d.AssignedDriver, d.SpecialInstructions, d.DeliveryNotes,
		d.DeliveredAt, d.UpdatedAt, string(prev))
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.casMiss(ctx, "delivery_requests", d.ID)
	}
	return nil
}
