package db

import (
	"context"
	"fmt"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

const invoiceColumns = `id, booking_id, customer_id, invoice_number, amount, status, due_date, paid_at,
	payment_method, transaction_id, notes, created_at, updated_at`

func scanInvoice(s scanner) (models.Invoice, error) {
	var inv models.Invoice
	err := s.Scan(&inv.ID, &inv.BookingID, &inv.CustomerID, &inv.InvoiceNumber, &inv.Amount, &inv.Status,
		&inv.DueDate, &inv.PaidAt, &inv.PaymentMethod, &inv.TransactionID, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (db *Database) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO invoices (id, booking_id, customer_id, invoice_number, amount, status, due_date, paid_at,
			payment_method, transaction_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		inv.ID, inv.BookingID, inv.CustomerID, inv.InvoiceNumber, inv.Amount, string(inv.Status), inv.DueDate,
		inv.PaidAt, inv.PaymentMethod, inv.TransactionID, inv.Notes, inv.CreatedAt, inv.UpdatedAt)
	return translate(err)
}

func (db *Database) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := scanInvoice(db.Pool.QueryRow(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id))
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (db *Database) ListInvoices(ctx context.Context, f store.Filter) ([]models.Invoice, int, error) {
	w := filterWhere(f, "", "id", "invoice_number", "notes")
	if f.DueBefore != nil {
		w.and("due_date < %s", *f.DueBefore)
	}
	return listPage(ctx, db, "invoices", invoiceColumns, w, f, scanInvoice)
}

func (db *Database) UpdateInvoice(ctx context.Context, inv *models.Invoice, prev models.InvoiceStatus) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE invoices SET amount = $2, status = $3, due_date = $4, paid_at = $5, payment_method = $6,
			transaction_id = $7, notes = $8, updated_at = $9
		WHERE id = $1 AND status = $10`,
		inv.ID, inv.Amount, string(inv.Status), inv.DueDate, inv.PaidAt, inv.PaymentMethod,
		inv.TransactionID, inv.Notes, inv.UpdatedAt, string(prev))
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.casMiss(ctx, "invoices", inv.ID)
	}
	return nil
}

func (db *Database) DeleteInvoice(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// NextInvoiceSequence bumps the per-period counter in one statement, so
// concurrent callers always receive distinct values.
func (db *Database) NextInvoiceSequence(ctx context.Context, period string) (int, error) {
	var next int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO invoice_sequences (period, last_value) VALUES ($1, 1)
		ON CONFLICT (period) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value`, period).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return next, nil
}
