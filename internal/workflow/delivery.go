package workflow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/policy"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

const trackingAttempts = 3

// TrackingNumber renders "WW" + the last 8 digits of the epoch millis + 4
// uppercase hex characters
func TrackingNumber(now time.Time) (string, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate tracking suffix: %w", err)
	}
	return fmt.Sprintf("WW%08d%04X", now.UnixMilli()%100000000, binary.BigEndian.Uint16(b[:])), nil
}

// CreateDelivery registers a delivery for the customer's booking and assigns
// its tracking number
func (e *Engine) CreateDelivery(ctx context.Context, actor models.Actor, req models.CreateDeliveryRequest) (*models.DeliveryRequest, error) {
	if _, err := e.authorize(actor, policy.DeliveryCreate, models.KindDelivery); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, apperr.Validation("delivery address is required")
	}
	if req.PreferredDate.IsZero() {
		return nil, apperr.Validation("preferred date is required")
	}
	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyStandard
	}
	if !urgency.IsValid() {
		return nil, apperr.Validation("invalid urgency %q", urgency)
	}
	b, err := e.store.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, storeErr(err, models.KindBooking)
	}
	if b.CustomerID != actor.ID {
		return nil, apperr.Forbidden("access to this booking is not permitted")
	}

	now := e.now()
	d := &models.DeliveryRequest{
		ID:                  newID(),
		BookingID:           b.ID,
		CustomerID:          b.CustomerID,
		DeliveryAddress:     strings.TrimSpace(req.DeliveryAddress),
		PreferredDate:       req.PreferredDate.UTC(),
		Urgency:             urgency,
		Status:              models.DeliveryStatusRequested,
		SpecialInstructions: req.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	for attempt := 1; ; attempt++ {
		if d.TrackingNumber, err = TrackingNumber(e.clock()); err != nil {
			return nil, apperr.Unexpected("failed to create delivery", err)
		}
		err = e.store.CreateDelivery(ctx, d)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicate) || attempt == trackingAttempts {
			return nil, storeErr(err, models.KindDelivery)
		}
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindDelivery, Action: models.ActionCreate, EntityID: d.ID, CustomerID: d.CustomerID,
		To: string(d.Status), Entity: d,
	})
	return d, nil
}

func (e *Engine) GetDelivery(ctx context.Context, actor models.Actor, id string) (*models.DeliveryRequest, error) {
	scope, err := e.authorize(actor, policy.DeliveryRead, models.KindDelivery)
	if err != nil {
		return nil, err
	}
	d, err := e.store.GetDelivery(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindDelivery)
	}
	if err := scope.Check(d, models.KindDelivery); err != nil {
		return nil, err
	}
	return d, nil
}

func (e *Engine) ListDeliveries(ctx context.Context, actor models.Actor, params models.ListParams) (models.ListResponse[models.DeliveryRequest], error) {
	scope, err := e.authorize(actor, policy.DeliveryRead, models.KindDelivery)
	if err != nil {
		return models.ListResponse[models.DeliveryRequest]{}, err
	}
	f, ok, err := listFilter(&params, scope, deliveryMachine.ParseAll)
	if err != nil || !ok {
		return models.NewListResponse[models.DeliveryRequest](nil, 0, params), err
	}
	items, total, err := e.store.ListDeliveries(ctx, f)
	if err != nil {
		return models.ListResponse[models.DeliveryRequest]{}, storeErr(err, models.KindDelivery)
	}
	return models.NewListResponse(items, total, params), nil
}

// TrackDelivery is open to any authenticated actor
func (e *Engine) TrackDelivery(ctx context.Context, actor models.Actor, id string) (*models.TrackingInfo, error) {
	if err := e.gate(actor, policy.DeliveryTrack); err != nil {
		return nil, err
	}
	d, err := e.store.GetDelivery(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindDelivery)
	}
	return &models.TrackingInfo{
		TrackingNumber:  d.TrackingNumber,
		Status:          d.Status,
		DeliveryAddress: d.DeliveryAddress,
		PreferredDate:   d.PreferredDate,
		ScheduledDate:   d.ScheduledDate,
		DeliveredAt:     d.DeliveredAt,
		AssignedDriver:  d.AssignedDriver,
		Urgency:         d.Urgency,
	}, nil
}

// deliveryTransition applies action. assign_driver keeps the current status.
func (e *Engine) deliveryTransition(ctx context.Context, actor models.Actor, op policy.Operation, id, action string, mutate func(d *models.DeliveryRequest)) (*models.DeliveryRequest, error) {
	scope, err := e.authorize(actor, op, models.KindDelivery)
	if err != nil {
		return nil, err
	}
	d, err := e.store.GetDelivery(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindDelivery)
	}
	if err := scope.CheckOwner(d, models.KindDelivery); err != nil {
		return nil, err
	}
	prev := d.Status
	next := prev
	if action != models.ActionAssignDriver {
		if next, err = deliveryMachine.Next(prev, action); err != nil {
			return nil, err
		}
	}
	if mutate != nil {
		mutate(d)
	}
	d.Status = next
	d.UpdatedAt = e.now()
	if err := e.store.UpdateDelivery(ctx, d, prev); err != nil {
		return nil, storeErr(err, models.KindDelivery)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindDelivery, Action: action, EntityID: d.ID, CustomerID: d.CustomerID,
		From: string(prev), To: string(next), Entity: d,
	})
	return d, nil
}

func (e *Engine) ScheduleDelivery(ctx context.Context, actor models.Actor, id string, req models.ScheduleDeliveryRequest) (*models.DeliveryRequest, error) {
	driver := strings.TrimSpace(req.AssignedDriver)
	if driver == "" {
		return nil, apperr.Validation("assigned_driver is required")
	}
	if req.ScheduledDate.IsZero() {
		return nil, apperr.Validation("scheduled_date is required")
	}
	return e.deliveryTransition(ctx, actor, policy.DeliverySchedule, id, models.ActionSchedule, func(d *models.DeliveryRequest) {
		date := req.ScheduledDate.UTC()
		d.ScheduledDate = &date
		d.AssignedDriver = &driver
	})
}

// AssignDriver sets the driver without touching the status
func (e *Engine) AssignDriver(ctx context.Context, actor models.Actor, id string, req models.AssignDriverRequest) (*models.DeliveryRequest, error) {
	driver := strings.TrimSpace(req.AssignedDriver)
	if driver == "" {
		return nil, apperr.Validation("assigned_driver is required")
	}
	return e.deliveryTransition(ctx, actor, policy.DeliveryAssignDriver, id, models.ActionAssignDriver, func(d *models.DeliveryRequest) {
		d.AssignedDriver = &driver
	})
}

func (e *Engine) DispatchDelivery(ctx context.Context, actor models.Actor, id string) (*models.DeliveryRequest, error) {
	return e.deliveryTransition(ctx, actor, policy.DeliveryDispatch, id, models.ActionDispatch, nil)
}

func (e *Engine) CompleteDelivery(ctx context.Context, actor models.Actor, id string, req models.CompleteDeliveryRequest) (*models.DeliveryRequest, error) {
	return e.deliveryTransition(ctx, actor, policy.DeliveryComplete, id, models.ActionComplete, func(d *models.DeliveryRequest) {
		at := e.now()
		d.DeliveredAt = &at
		if notes := strings.TrimSpace(req.DeliveryNotes); notes != "" {
			d.DeliveryNotes = &notes
		}
	})
}

// OverrideDelivery patches any delivery field. The tracking number is fixed.
func (e *Engine) OverrideDelivery(ctx context.Context, actor models.Actor, id string, req models.DeliveryOverrideRequest) (*models.DeliveryRequest, error) {
	if _, err := e.authorize(actor, policy.DeliveryOverride, models.KindDelivery); err != nil {
		return nil, err
	}
	d, err := e.store.GetDelivery(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindDelivery)
	}
	prev := d.Status
	if req.Status != nil {
		s, err := deliveryMachine.Parse(*req.Status)
		if err != nil {
			return nil, err
		}
		d.Status = s
	}
	if req.Urgency != nil {
		u := models.Urgency(*req.Urgency)
		if !u.IsValid() {
			return nil, apperr.Validation("invalid urgency %q", *req.Urgency)
		}
		d.Urgency = u
	}
	if req.DeliveryAddress != nil {
		if strings.TrimSpace(*req.DeliveryAddress) == "" {
			return nil, apperr.Validation("delivery address is required")
		}
		d.DeliveryAddress = strings.TrimSpace(*req.DeliveryAddress)
	}
	if req.PreferredDate != nil {
		d.PreferredDate = req.PreferredDate.UTC()
	}
	if req.ScheduledDate != nil {
		date := req.ScheduledDate.UTC()
		d.ScheduledDate = &date
	}
	if req.AssignedDriver != nil {
		d.AssignedDriver = strPtr(*req.AssignedDriver)
	}
	d.UpdatedAt = e.now()
	if err := e.store.UpdateDelivery(ctx, d, prev); err != nil {
		return nil, storeErr(err, models.KindDelivery)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindDelivery, Action: models.ActionOverride, EntityID: d.ID, CustomerID: d.CustomerID,
		From: string(prev), To: string(d.Status), Entity: d,
	})
	return d, nil
}
