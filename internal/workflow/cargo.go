package workflow

import (
	"context"
	"strings"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/policy"
)

// CreateCargo submits a cargo item against a booking. Customers may only
// submit for their own bookings; staff submit on the customer's behalf.
func (e *Engine) CreateCargo(ctx context.Context, actor models.Actor, req models.CreateCargoRequest) (*models.CargoDispatchDetail, error) {
	// any authenticated role may submit, including roles that cannot read cargo back
	if err := e.gate(actor, policy.CargoCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ItemDescription) == "" {
		return nil, apperr.Validation("item description is required")
	}
	if req.Quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}
	if req.Weight < 0 {
		return nil, apperr.Validation("weight must not be negative")
	}
	b, err := e.store.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, storeErr(err, models.KindBooking)
	}
	if actor.Role == models.RoleCustomer && b.CustomerID != actor.ID {
		return nil, apperr.Forbidden("access to this booking is not permitted")
	}

	now := e.now()
	c := &models.CargoDispatchDetail{
		ID:              newID(),
		BookingID:       b.ID,
		CustomerID:      b.CustomerID,
		ItemDescription: strings.TrimSpace(req.ItemDescription),
		Quantity:        req.Quantity,
		Weight:          req.Weight,
		Dimensions:      req.Dimensions,
		SpecialHandling: req.SpecialHandling,
		Status:          models.CargoStatusSubmitted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.store.CreateCargo(ctx, c); err != nil {
		return nil, storeErr(err, models.KindCargo)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindCargo, Action: models.ActionCreate, EntityID: c.ID, CustomerID: c.CustomerID,
		To: string(c.Status), Entity: c,
	})
	return c, nil
}

func (e *Engine) GetCargo(ctx context.Context, actor models.Actor, id string) (*models.CargoDispatchDetail, error) {
	scope, err := e.authorize(actor, policy.CargoRead, models.KindCargo)
	if err != nil {
		return nil, err
	}
	c, err := e.store.GetCargo(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindCargo)
	}
	if err := scope.Check(c, models.KindCargo); err != nil {
		return nil, err
	}
	return c, nil
}

func (e *Engine) ListCargo(ctx context.Context, actor models.Actor, params models.ListParams) (models.ListResponse[models.CargoDispatchDetail], error) {
	scope, err := e.authorize(actor, policy.CargoRead, models.KindCargo)
	if err != nil {
		return models.ListResponse[models.CargoDispatchDetail]{}, err
	}
	f, ok, err := listFilter(&params, scope, cargoMachine.ParseAll)
	if err != nil || !ok {
		return models.NewListResponse[models.CargoDispatchDetail](nil, 0, params), err
	}
	items, total, err := e.store.ListCargo(ctx, f)
	if err != nil {
		return models.ListResponse[models.CargoDispatchDetail]{}, storeErr(err, models.KindCargo)
	}
	return models.NewListResponse(items, total, params), nil
}

func (e *Engine) cargoTransition(ctx context.Context, actor models.Actor, op policy.Operation, id, action, reason string, mutate func(c *models.CargoDispatchDetail)) (*models.CargoDispatchDetail, error) {
	scope, err := e.authorize(actor, op, models.KindCargo)
	if err != nil {
		return nil, err
	}
	c, err := e.store.GetCargo(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindCargo)
	}
	if err := scope.CheckOwner(c, models.KindCargo); err != nil {
		return nil, err
	}
	prev := c.Status
	next, err := cargoMachine.Next(prev, action)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(c)
	}
	c.Status = next
	c.UpdatedAt = e.now()
	if err := e.store.UpdateCargo(ctx, c, prev); err != nil {
		return nil, storeErr(err, models.KindCargo)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindCargo, Action: action, EntityID: c.ID, CustomerID: c.CustomerID,
		From: string(prev), To: string(next), Reason: reason, Entity: c,
	})
	return c, nil
}

func (e *Engine) ApproveCargo(ctx context.Context, actor models.Actor, id string) (*models.CargoDispatchDetail, error) {
	return e.cargoTransition(ctx, actor, policy.CargoApprove, id, models.ActionApprove, "", func(c *models.CargoDispatchDetail) {
		approver := actor.ID
		c.ApprovedByID = &approver
	})
}

// RejectCargo sends the item back to submitted and annotates its handling notes
func (e *Engine) RejectCargo(ctx context.Context, actor models.Actor, id, reason string) (*models.CargoDispatchDetail, error) {
	reason = strings.TrimSpace(reason)
	return e.cargoTransition(ctx, actor, policy.CargoReject, id, models.ActionReject, reason, func(c *models.CargoDispatchDetail) {
		note := rejection(reason)
		c.SpecialHandling = &note
	})
}

func (e *Engine) ProcessCargo(ctx context.Context, actor models.Actor, id string) (*models.CargoDispatchDetail, error) {
	return e.cargoTransition(ctx, actor, policy.CargoProcess, id, models.ActionProcess, "", nil)
}

func (e *Engine) CompleteCargo(ctx context.Context, actor models.Actor, id string) (*models.CargoDispatchDetail, error) {
	return e.cargoTransition(ctx, actor, policy.CargoComplete, id, models.ActionComplete, "", nil)
}

func (e *Engine) OverrideCargo(ctx context.Context, actor models.Actor, id string, req models.CargoOverrideRequest) (*models.CargoDispatchDetail, error) {
	if _, err := e.authorize(actor, policy.CargoOverride, models.KindCargo); err != nil {
		return nil, err
	}
	c, err := e.store.GetCargo(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindCargo)
	}
	prev := c.Status
	if req.Status != nil {
		s, err := cargoMachine.Parse(*req.Status)
		if err != nil {
			return nil, err
		}
		c.Status = s
	}
	if req.ItemDescription != nil {
		if strings.TrimSpace(*req.ItemDescription) == "" {
			return nil, apperr.Validation("item description is required")
		}
		c.ItemDescription = strings.TrimSpace(*req.ItemDescription)
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, apperr.Validation("quantity must be at least 1")
		}
		c.Quantity = *req.Quantity
	}
	if req.Weight != nil {
		if *req.Weight < 0 {
			return nil, apperr.Validation("weight must not be negative")
		}
		c.Weight = *req.Weight
	}
	if req.Dimensions != nil {
		c.Dimensions = *req.Dimensions
	}
	if req.SpecialHandling != nil {
		c.SpecialHandling = req.SpecialHandling
	}
	c.UpdatedAt = e.now()
	if err := e.store.UpdateCargo(ctx, c, prev); err != nil {
		return nil, storeErr(err, models.KindCargo)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindCargo, Action: models.ActionOverride, EntityID: c.ID, CustomerID: c.CustomerID,
		From: string(prev), To: string(c.Status), Entity: c,
	})
	return c, nil
}
