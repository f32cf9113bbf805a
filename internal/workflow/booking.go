package workflow

import (
	"context"
	"strings"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/cache"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/policy"
	"go.uber.org/zap"
)

// CreateBooking books warehouse space for an accepted or quoted quote.
// Space is reserved before the booking is written and given back if the
// write fails.
func (e *Engine) CreateBooking(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.Booking, error) {
	if _, err := e.authorize(actor, policy.BookingCreate, models.KindBooking); err != nil {
		return nil, err
	}
	q, err := e.store.GetQuote(ctx, req.QuoteID)
	if err != nil {
		return nil, storeErr(err, models.KindQuote)
	}
	if q.CustomerID != actor.ID {
		return nil, apperr.Forbidden("access to this quote is not permitted")
	}
	if q.Status != models.QuoteStatusQuoted && q.Status != models.QuoteStatusApproved {
		return nil, apperr.Precondition("quote must be quoted or approved before booking, it is %s", q.Status)
	}
	status := models.BookingStatusPending
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		if status, err = bookingMachine.Parse(strings.TrimSpace(*req.Status)); err != nil {
			return nil, err
		}
	}

	warehouseID := strings.TrimSpace(req.WarehouseID)
	if warehouseID == "" && q.WarehouseID != nil {
		warehouseID = *q.WarehouseID
	}
	if warehouseID == "" {
		return nil, apperr.Validation("warehouse_id is required")
	}
	space := q.RequiredSpace
	if req.RequiredSpace != nil {
		space = *req.RequiredSpace
	}
	if space <= 0 {
		return nil, apperr.Validation("required space must be greater than zero")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, apperr.Validation("end date must be after start date")
	}
	var amount float64
	switch {
	case req.TotalAmount != nil:
		amount = *req.TotalAmount
	case q.FinalPrice != nil:
		amount = *q.FinalPrice
	}
	if amount < 0 {
		return nil, apperr.Validation("total amount must not be negative")
	}

	// completed or cancelled bookings are recorded without taking space
	holds := status.HoldsSpace()
	if holds {
		if err := e.ledger.Reserve(ctx, warehouseID, space); err != nil {
			return nil, err
		}
	}

	now := e.now()
	b := &models.Booking{
		ID:            newID(),
		QuoteID:       q.ID,
		CustomerID:    actor.ID,
		WarehouseID:   warehouseID,
		RequiredSpace: space,
		Status:        status,
		StartDate:     req.StartDate.UTC(),
		EndDate:       req.EndDate.UTC(),
		TotalAmount:   amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.store.CreateBooking(ctx, b); err != nil {
		if !holds {
			return nil, storeErr(err, models.KindBooking)
		}
		if rerr := e.ledger.Release(ctx, warehouseID, space); rerr != nil {
			e.logger.Error("Failed to release space after booking write failed",
				zap.String("warehouse_id", warehouseID), zap.Float64("space", space), zap.Error(rerr))
		}
		return nil, storeErr(err, models.KindBooking)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindBooking, Action: models.ActionCreate, EntityID: b.ID, CustomerID: b.CustomerID,
		To: string(b.Status), Entity: b,
	}, cache.WarehouseListKey)
	return b, nil
}

func (e *Engine) GetBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	scope, err := e.authorize(actor, policy.BookingRead, models.KindBooking)
	if err != nil {
		return nil, err
	}
	b, err := e.store.GetBooking(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindBooking)
	}
	if err := scope.Check(b, models.KindBooking); err != nil {
		return nil, err
	}
	return b, nil
}

func (e *Engine) ListBookings(ctx context.Context, actor models.Actor, params models.ListParams) (models.ListResponse[models.Booking], error) {
	scope, err := e.authorize(actor, policy.BookingRead, models.KindBooking)
	if err != nil {
		return models.ListResponse[models.Booking]{}, err
	}
	f, ok, err := listFilter(&params, scope, bookingMachine.ParseAll)
	if err != nil || !ok {
		return models.NewListResponse[models.Booking](nil, 0, params), err
	}
	items, total, err := e.store.ListBookings(ctx, f)
	if err != nil {
		return models.ListResponse[models.Booking]{}, storeErr(err, models.KindBooking)
	}
	return models.NewListResponse(items, total, params), nil
}

// bookingTransition applies action and keeps the capacity ledger in step:
// leaving a space-holding status gives the space back.
func (e *Engine) bookingTransition(ctx context.Context, actor models.Actor, op policy.Operation, id, action, reason string, mutate func(b *models.Booking)) (*models.Booking, error) {
	scope, err := e.authorize(actor, op, models.KindBooking)
	if err != nil {
		return nil, err
	}
	b, err := e.store.GetBooking(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindBooking)
	}
	if err := scope.CheckOwner(b, models.KindBooking); err != nil {
		return nil, err
	}
	prev := b.Status
	next, err := bookingMachine.Next(prev, action)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(b)
	}
	b.Status = next
	b.UpdatedAt = e.now()
	if err := e.store.UpdateBooking(ctx, b, prev); err != nil {
		return nil, storeErr(err, models.KindBooking)
	}

	var invalidate []string
	if prev.HoldsSpace() && !next.HoldsSpace() {
		if err := e.ledger.Release(ctx, b.WarehouseID, b.RequiredSpace); err != nil {
			e.logger.Error("Failed to restore warehouse space",
				zap.String("booking_id", b.ID), zap.String("warehouse_id", b.WarehouseID), zap.Error(err))
		}
		invalidate = append(invalidate, cache.WarehouseListKey)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindBooking, Action: action, EntityID: b.ID, CustomerID: b.CustomerID,
		From: string(prev), To: string(next), Reason: reason, Entity: b,
	}, invalidate...)
	return b, nil
}

// ConfirmBooking records the approving staff member
func (e *Engine) ConfirmBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return e.bookingTransition(ctx, actor, policy.BookingConfirm, id, models.ActionConfirm, "", func(b *models.Booking) {
		approver := actor.ID
		b.ApprovedByID = &approver
	})
}

func (e *Engine) CancelBooking(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	return e.bookingTransition(ctx, actor, policy.BookingCancel, id, models.ActionCancel, reason, func(b *models.Booking) {
		b.CancellationReason = strPtr(reason)
	})
}

// ApproveBooking is the customer acknowledgement of a pending booking. The
// status stays pending.
func (e *Engine) ApproveBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return e.bookingTransition(ctx, actor, policy.BookingApprove, id, models.ActionApprove, "", nil)
}

// RejectBooking cancels a booking from any status
func (e *Engine) RejectBooking(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	return e.bookingTransition(ctx, actor, policy.BookingReject, id, models.ActionReject, reason, func(b *models.Booking) {
		b.CancellationReason = strPtr(reason)
	})
}

func (e *Engine) ActivateBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return e.bookingTransition(ctx, actor, policy.BookingActivate, id, models.ActionActivate, "", nil)
}

func (e *Engine) CompleteBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return e.bookingTransition(ctx, actor, policy.BookingComplete, id, models.ActionComplete, "", nil)
}

// OverrideBooking patches any booking field. Moving the booking into or out
// of a space-holding status, or to another warehouse, moves the reservation
// with it.
func (e *Engine) OverrideBooking(ctx context.Context, actor models.Actor, id string, req models.BookingOverrideRequest) (*models.Booking, error) {
	if _, err := e.authorize(actor, policy.BookingOverride, models.KindBooking); err != nil {
		return nil, err
	}
	b, err := e.store.GetBooking(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindBooking)
	}
	prev := b.Status
	prevWarehouse := b.WarehouseID

	if req.Status != nil {
		s, err := bookingMachine.Parse(*req.Status)
		if err != nil {
			return nil, err
		}
		b.Status = s
	}
	if req.WarehouseID != nil && *req.WarehouseID != "" {
		b.WarehouseID = *req.WarehouseID
	}
	if req.StartDate != nil {
		b.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		b.EndDate = req.EndDate.UTC()
	}
	if !b.EndDate.After(b.StartDate) {
		return nil, apperr.Validation("end date must be after start date")
	}
	if req.TotalAmount != nil {
		if *req.TotalAmount < 0 {
			return nil, apperr.Validation("total amount must not be negative")
		}
		b.TotalAmount = *req.TotalAmount
	}
	if req.ApprovedByID != nil {
		b.ApprovedByID = strPtr(*req.ApprovedByID)
	}
	b.UpdatedAt = e.now()

	held := prev.HoldsSpace()
	holds := b.Status.HoldsSpace()
	moved := b.WarehouseID != prevWarehouse
	reserveNew := holds && (!held || moved)
	releaseOld := held && (!holds || moved)

	if reserveNew {
		if err := e.ledger.Reserve(ctx, b.WarehouseID, b.RequiredSpace); err != nil {
			return nil, err
		}
	}
	if err := e.store.UpdateBooking(ctx, b, prev); err != nil {
		if reserveNew {
			if rerr := e.ledger.Release(ctx, b.WarehouseID, b.RequiredSpace); rerr != nil {
				e.logger.Error("Failed to undo reservation", zap.String("booking_id", b.ID), zap.Error(rerr))
			}
		}
		return nil, storeErr(err, models.KindBooking)
	}
	var invalidate []string
	if releaseOld {
		if err := e.ledger.Release(ctx, prevWarehouse, b.RequiredSpace); err != nil {
			e.logger.Error("Failed to restore warehouse space",
				zap.String("booking_id", b.ID), zap.String("warehouse_id", prevWarehouse), zap.Error(err))
		}
	}
	if reserveNew || releaseOld {
		invalidate = append(invalidate, cache.WarehouseListKey)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindBooking, Action: models.ActionOverride, EntityID: b.ID, CustomerID: b.CustomerID,
		From: string(prev), To: string(b.Status), Entity: b,
	}, invalidate...)
	return b, nil
}
