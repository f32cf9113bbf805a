package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/policy"
	"go.uber.org/zap"
)

// SystemActor performs scheduled invoice maintenance
var SystemActor = models.Actor{ID: "system", Role: models.RoleAccounts, IsActive: true}

// InvoiceNumber renders INV-YYYYMM-NNNN
func InvoiceNumber(at time.Time, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", at.Format("200601"), seq)
}

// CreateInvoice drafts an invoice for a booking. The number comes from the
// monthly counter so concurrent creates never share one.
func (e *Engine) CreateInvoice(ctx context.Context, actor models.Actor, req models.CreateInvoiceRequest) (*models.Invoice, error) {
	if _, err := e.authorize(actor, policy.InvoiceCreate, models.KindInvoice); err != nil {
		return nil, err
	}
	if req.DueDate.IsZero() {
		return nil, apperr.Validation("due date is required")
	}
	b, err := e.store.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, storeErr(err, models.KindBooking)
	}
	amount := b.TotalAmount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 {
		return nil, apperr.Validation("amount must be greater than zero")
	}

	now := e.now()
	seq, err := e.store.NextInvoiceSequence(ctx, now.Format("200601"))
	if err != nil {
		return nil, apperr.Unexpected("failed to allocate invoice number", err)
	}
	inv := &models.Invoice{
		ID:            newID(),
		BookingID:     b.ID,
		CustomerID:    b.CustomerID,
		InvoiceNumber: InvoiceNumber(now, seq),
		Amount:        amount,
		Status:        models.InvoiceStatusDraft,
		DueDate:       req.DueDate.UTC(),
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.store.CreateInvoice(ctx, inv); err != nil {
		return nil, storeErr(err, models.KindInvoice)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindInvoice, Action: models.ActionCreate, EntityID: inv.ID, CustomerID: inv.CustomerID,
		To: string(inv.Status), Entity: inv,
	})
	return inv, nil
}

func (e *Engine) GetInvoice(ctx context.Context, actor models.Actor, id string) (*models.Invoice, error) {
	scope, err := e.authorize(actor, policy.InvoiceRead, models.KindInvoice)
	if err != nil {
		return nil, err
	}
	inv, err := e.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindInvoice)
	}
	if err := scope.Check(inv, models.KindInvoice); err != nil {
		return nil, err
	}
	return inv, nil
}

func (e *Engine) ListInvoices(ctx context.Context, actor models.Actor, params models.ListParams) (models.ListResponse[models.Invoice], error) {
	scope, err := e.authorize(actor, policy.InvoiceRead, models.KindInvoice)
	if err != nil {
		return models.ListResponse[models.Invoice]{}, err
	}
	f, ok, err := listFilter(&params, scope, invoiceMachine.ParseAll)
	if err != nil || !ok {
		return models.NewListResponse[models.Invoice](nil, 0, params), err
	}
	items, total, err := e.store.ListInvoices(ctx, f)
	if err != nil {
		return models.ListResponse[models.Invoice]{}, storeErr(err, models.KindInvoice)
	}
	return models.NewListResponse(items, total, params), nil
}

func (e *Engine) invoiceTransition(ctx context.Context, actor models.Actor, op policy.Operation, id, action string, mutate func(inv *models.Invoice)) (*models.Invoice, error) {
	scope, err := e.authorize(actor, op, models.KindInvoice)
	if err != nil {
		return nil, err
	}
	inv, err := e.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindInvoice)
	}
	if err := scope.CheckOwner(inv, models.KindInvoice); err != nil {
		return nil, err
	}
	prev := inv.Status
	if action == models.ActionPay && prev == models.InvoiceStatusPaid {
		return nil, apperr.Precondition("invoice is already paid")
	}
	next, err := invoiceMachine.Next(prev, action)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(inv)
	}
	inv.Status = next
	inv.UpdatedAt = e.now()
	if err := e.store.UpdateInvoice(ctx, inv, prev); err != nil {
		return nil, storeErr(err, models.KindInvoice)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindInvoice, Action: action, EntityID: inv.ID, CustomerID: inv.CustomerID,
		From: string(prev), To: string(next), Entity: inv,
	})
	return inv, nil
}

func (e *Engine) SendInvoice(ctx context.Context, actor models.Actor, id string) (*models.Invoice, error) {
	return e.invoiceTransition(ctx, actor, policy.InvoiceSend, id, models.ActionSend, nil)
}

// MarkInvoicePaid records a payment confirmed by staff
func (e *Engine) MarkInvoicePaid(ctx context.Context, actor models.Actor, id string, req models.MarkPaidRequest) (*models.Invoice, error) {
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return nil, apperr.Validation("payment method is required")
	}
	return e.invoiceTransition(ctx, actor, policy.InvoiceMarkPaid, id, models.ActionMarkPaid, func(inv *models.Invoice) {
		at := e.now()
		inv.PaidAt = &at
		inv.PaymentMethod = &method
		inv.TransactionID = strPtr(strings.TrimSpace(req.TransactionID))
	})
}

func (e *Engine) MarkInvoiceOverdue(ctx context.Context, actor models.Actor, id string) (*models.Invoice, error) {
	return e.invoiceTransition(ctx, actor, policy.InvoiceMarkOverdue, id, models.ActionMarkOverdue, nil)
}

// PayInvoice is the customer-side payment. Only the status changes; no
// payment gateway is contacted.
func (e *Engine) PayInvoice(ctx context.Context, actor models.Actor, id string, req models.PayInvoiceRequest) (*models.Invoice, error) {
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return nil, apperr.Validation("payment method is required")
	}
	return e.invoiceTransition(ctx, actor, policy.InvoicePay, id, models.ActionPay, func(inv *models.Invoice) {
		at := e.now()
		inv.PaidAt = &at
		inv.PaymentMethod = &method
		if ref := req.PaymentDetails["transaction_id"]; ref != "" {
			inv.TransactionID = &ref
		}
	})
}

func (e *Engine) CancelInvoice(ctx context.Context, actor models.Actor, id string) (*models.Invoice, error) {
	return e.invoiceTransition(ctx, actor, policy.InvoiceCancel, id, models.ActionCancel, nil)
}

// DeleteInvoice removes an invoice regardless of status
func (e *Engine) DeleteInvoice(ctx context.Context, actor models.Actor, id string) error {
	if _, err := e.authorize(actor, policy.InvoiceDelete, models.KindInvoice); err != nil {
		return err
	}
	inv, err := e.store.GetInvoice(ctx, id)
	if err != nil {
		return storeErr(err, models.KindInvoice)
	}
	if err := e.store.DeleteInvoice(ctx, id); err != nil {
		return storeErr(err, models.KindInvoice)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindInvoice, Action: models.ActionDelete, EntityID: inv.ID, CustomerID: inv.CustomerID,
		From: string(inv.Status),
	})
	return nil
}

// OverrideInvoice patches amount, due date, status or notes. The invoice number is fixed.
func (e *Engine) OverrideInvoice(ctx context.Context, actor models.Actor, id string, req models.InvoiceOverrideRequest) (*models.Invoice, error) {
	if _, err := e.authorize(actor, policy.InvoiceOverride, models.KindInvoice); err != nil {
		return nil, err
	}
	inv, err := e.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindInvoice)
	}
	prev := inv.Status
	if req.Status != nil {
		s, err := invoiceMachine.Parse(*req.Status)
		if err != nil {
			return nil, err
		}
		inv.Status = s
		if s == models.InvoiceStatusPaid && inv.PaidAt == nil {
			at := e.now()
			inv.PaidAt = &at
		}
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, apperr.Validation("amount must be greater than zero")
		}
		inv.Amount = *req.Amount
	}
	if req.DueDate != nil {
		inv.DueDate = req.DueDate.UTC()
	}
	if req.Notes != nil {
		inv.Notes = req.Notes
	}
	inv.UpdatedAt = e.now()
	if err := e.store.UpdateInvoice(ctx, inv, prev); err != nil {
		return nil, storeErr(err, models.KindInvoice)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindInvoice, Action: models.ActionOverride, EntityID: inv.ID, CustomerID: inv.CustomerID,
		From: string(prev), To: string(inv.Status), Entity: inv,
	})
	return inv, nil
}

// SweepOverdue marks every sent invoice whose due date has passed as overdue.
// It returns how many were marked. Invoices changed concurrently are skipped.
func (e *Engine) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	const pageSize = 100
	scope, err := e.authorize(SystemActor, policy.InvoiceMarkOverdue, models.KindInvoice)
	if err != nil {
		return 0, err
	}
	params := models.ListParams{Page: 1, Limit: pageSize, Status: string(models.InvoiceStatusSent), SortOrder: "asc"}
	f, _, err := listFilter(&params, scope, invoiceMachine.ParseAll)
	if err != nil {
		return 0, err
	}
	due := now.UTC()
	f.DueBefore = &due

	marked := 0
	for {
		items, _, err := e.store.ListInvoices(ctx, f)
		if err != nil {
			return marked, storeErr(err, models.KindInvoice)
		}
		progressed := 0
		for _, inv := range items {
			if _, err := e.MarkInvoiceOverdue(ctx, SystemActor, inv.ID); err != nil {
				if errors.Is(err, apperr.ErrPrecondition) || errors.Is(err, apperr.ErrNotFound) {
					e.logger.Info("Overdue sweep skipped invoice", zap.String("invoice_id", inv.ID), zap.Error(err))
					continue
				}
				return marked, err
			}
			marked++
			progressed++
		}
		// Stop on a short page, or when nothing on a full page could be moved.
		if len(items) < pageSize || progressed == 0 {
			break
		}
	}
	e.logger.Info("Overdue sweep finished", zap.Int("marked", marked))
	return marked, nil
}
