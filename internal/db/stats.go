package db

import (
	"context"
	"fmt"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
)

var statusTables = map[models.EntityKind]string{
	models.KindQuote:    "quotes",
	models.KindBooking:  "bookings",
	models.KindCargo:    "cargo_dispatch_details",
	models.KindDelivery: "delivery_requests",
	models.KindInvoice:  "invoices",
}

func (db *Database) CountByStatus(ctx context.Context, kind models.EntityKind) (map[string]int, error) {
	table, ok := statusTables[kind]
	if !ok {
		return nil, fmt.Errorf("no status counts for %s", kind)
	}
	rows, err := db.Pool.Query(ctx, "SELECT status, COUNT(*) FROM "+table+" GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", table, err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (db *Database) InvoiceTotals(ctx context.Context) (float64, float64, error) {
	var paid, outstanding float64
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(amount) FILTER (WHERE status IN ('sent', 'overdue')), 0)
		FROM invoices`).Scan(&paid, &outstanding)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to total invoices: %w", err)
	}
	return paid, outstanding, nil
}
