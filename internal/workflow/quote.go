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

// CreateQuote opens a pending quote owned by the calling customer
func (e *Engine) CreateQuote(ctx context.Context, actor models.Actor, req models.CreateQuoteRequest) (*models.Quote, error) {
	if _, err := e.authorize(actor, policy.QuoteCreate, models.KindQuote); err != nil {
		return nil, err
	}
	if !req.StorageType.IsValid() {
		return nil, apperr.Validation("invalid storage type %q", req.StorageType)
	}
	if req.RequiredSpace <= 0 {
		return nil, apperr.Validation("required space must be greater than zero")
	}
	if strings.TrimSpace(req.PreferredLocation) == "" || strings.TrimSpace(req.Duration) == "" {
		return nil, apperr.Validation("preferred location and duration are required")
	}

	now := e.now()
	q := &models.Quote{
		ID:                  newID(),
		CustomerID:          actor.ID,
		StorageType:         req.StorageType,
		RequiredSpace:       req.RequiredSpace,
		PreferredLocation:   strings.TrimSpace(req.PreferredLocation),
		Duration:            strings.TrimSpace(req.Duration),
		SpecialRequirements: req.SpecialRequirements,
		Status:              models.QuoteStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := e.store.CreateQuote(ctx, q); err != nil {
		return nil, storeErr(err, models.KindQuote)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindQuote, Action: models.ActionCreate, EntityID: q.ID, CustomerID: q.CustomerID,
		To: string(q.Status), Entity: q,
	}, cache.QuoteListKey(q.CustomerID))
	return q, nil
}

// GetQuote returns a quote visible to actor
func (e *Engine) GetQuote(ctx context.Context, actor models.Actor, id string) (*models.Quote, error) {
	scope, err := e.authorize(actor, policy.QuoteRead, models.KindQuote)
	if err != nil {
		return nil, err
	}
	q, err := e.store.GetQuote(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindQuote)
	}
	if err := scope.Check(q, models.KindQuote); err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuotes lists quotes in actor's scope. A customer's unfiltered first
// page is served from the cache.
func (e *Engine) ListQuotes(ctx context.Context, actor models.Actor, params models.ListParams) (models.ListResponse[models.Quote], error) {
	scope, err := e.authorize(actor, policy.QuoteRead, models.KindQuote)
	if err != nil {
		return models.ListResponse[models.Quote]{}, err
	}
	f, ok, err := listFilter(&params, scope, quoteMachine.ParseAll)
	if err != nil {
		return models.ListResponse[models.Quote]{}, err
	}
	if !ok {
		return models.NewListResponse[models.Quote](nil, 0, params), nil
	}

	cacheable := actor.Role == models.RoleCustomer && params.IsDefault()
	key := cache.QuoteListKey(actor.ID)
	if cacheable {
		var cached models.ListResponse[models.Quote]
		if hit, err := e.cache.GetJSON(ctx, key, &cached); err != nil {
			e.logger.Warn("Quote cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}
	// read before loading so a write committed during the load voids the fill
	var version int64
	if cacheable {
		if version, err = e.cache.Version(ctx, key); err != nil {
			e.logger.Warn("Quote cache version read failed", zap.String("key", key), zap.Error(err))
			cacheable = false
		}
	}

	items, total, err := e.store.ListQuotes(ctx, f)
	if err != nil {
		return models.ListResponse[models.Quote]{}, storeErr(err, models.KindQuote)
	}
	resp := models.NewListResponse(items, total, params)
	if cacheable {
		if _, err := e.cache.SetJSONIfVersion(ctx, key, resp, version); err != nil {
			e.logger.Warn("Quote cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, nil
}

// quoteTransition loads, authorizes, applies action and persists. mutate may
// adjust fields before the write.
func (e *Engine) quoteTransition(ctx context.Context, actor models.Actor, op policy.Operation, id, action, reason string, mutate func(q *models.Quote) error) (*models.Quote, error) {
	scope, err := e.authorize(actor, op, models.KindQuote)
	if err != nil {
		return nil, err
	}
	q, err := e.store.GetQuote(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindQuote)
	}
	if err := scope.CheckOwner(q, models.KindQuote); err != nil {
		return nil, err
	}
	prev := q.Status
	next, err := quoteMachine.Next(prev, action)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		if err := mutate(q); err != nil {
			return nil, err
		}
	}
	q.Status = next
	q.UpdatedAt = e.now()
	if err := e.store.UpdateQuote(ctx, q, prev); err != nil {
		return nil, storeErr(err, models.KindQuote)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindQuote, Action: action, EntityID: q.ID, CustomerID: q.CustomerID,
		From: string(prev), To: string(next), Reason: reason, Entity: q,
	}, cache.QuoteListKey(q.CustomerID))
	return q, nil
}

// AssignQuote hands a pending or processing quote to a staff member
func (e *Engine) AssignQuote(ctx context.Context, actor models.Actor, id string, req models.AssignQuoteRequest) (*models.Quote, error) {
	assignee := strings.TrimSpace(req.AssignedTo)
	if assignee == "" {
		return nil, apperr.Validation("assigned_to is required")
	}
	return e.quoteTransition(ctx, actor, policy.QuoteAssign, id, models.ActionAssign, "", func(q *models.Quote) error {
		q.AssignedTo = &assignee
		return nil
	})
}

// ApproveQuote prices a processing quote against a warehouse
func (e *Engine) ApproveQuote(ctx context.Context, actor models.Actor, id string, req models.ApproveQuoteRequest) (*models.Quote, error) {
	if req.FinalPrice <= 0 {
		return nil, apperr.Validation("final price must be greater than zero")
	}
	if req.WarehouseID == "" {
		return nil, apperr.Validation("warehouse_id is required")
	}
	return e.quoteTransition(ctx, actor, policy.QuoteApprove, id, models.ActionApprove, "", func(q *models.Quote) error {
		if _, err := e.store.GetWarehouse(ctx, req.WarehouseID); err != nil {
			return storeErr(err, models.KindWarehouse)
		}
		price := req.FinalPrice
		warehouseID := req.WarehouseID
		q.FinalPrice = &price
		q.WarehouseID = &warehouseID
		return nil
	})
}

// RejectQuote closes a quote. The reason replaces the special requirements text.
func (e *Engine) RejectQuote(ctx context.Context, actor models.Actor, id, reason string) (*models.Quote, error) {
	reason = strings.TrimSpace(reason)
	return e.quoteTransition(ctx, actor, policy.QuoteReject, id, models.ActionReject, reason, func(q *models.Quote) error {
		note := rejection(reason)
		q.SpecialRequirements = &note
		return nil
	})
}

// AcceptQuote lets the customer accept a quoted price
func (e *Engine) AcceptQuote(ctx context.Context, actor models.Actor, id string) (*models.Quote, error) {
	return e.quoteTransition(ctx, actor, policy.QuoteAccept, id, models.ActionAccept, "", nil)
}

// CalculatePrice returns the advisory price of a quote. warehouseID falls back
// to the quote's warehouse.
func (e *Engine) CalculatePrice(ctx context.Context, actor models.Actor, id, warehouseID string) (*models.PriceEstimate, error) {
	scope, err := e.authorize(actor, policy.QuotePrice, models.KindQuote)
	if err != nil {
		return nil, err
	}
	q, err := e.store.GetQuote(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindQuote)
	}
	if err := scope.CheckOwner(q, models.KindQuote); err != nil {
		return nil, err
	}
	if warehouseID == "" && q.WarehouseID != nil {
		warehouseID = *q.WarehouseID
	}
	if warehouseID == "" {
		return nil, apperr.Validation("warehouse_id is required to price this quote")
	}
	w, err := e.store.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, storeErr(err, models.KindWarehouse)
	}
	est := e.pricer.Estimate(q, w)
	return &est, nil
}

// OverrideQuote patches any quote field, bypassing the transition table
func (e *Engine) OverrideQuote(ctx context.Context, actor models.Actor, id string, req models.QuoteOverrideRequest) (*models.Quote, error) {
	if _, err := e.authorize(actor, policy.QuoteOverride, models.KindQuote); err != nil {
		return nil, err
	}
	q, err := e.store.GetQuote(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.KindQuote)
	}
	prev := q.Status

	if req.Status != nil {
		s, err := quoteMachine.Parse(*req.Status)
		if err != nil {
			return nil, err
		}
		q.Status = s
	}
	if req.StorageType != nil {
		if !req.StorageType.IsValid() {
			return nil, apperr.Validation("invalid storage type %q", *req.StorageType)
		}
		q.StorageType = *req.StorageType
	}
	if req.RequiredSpace != nil {
		if *req.RequiredSpace <= 0 {
			return nil, apperr.Validation("required space must be greater than zero")
		}
		q.RequiredSpace = *req.RequiredSpace
	}
	if req.FinalPrice != nil {
		if *req.FinalPrice <= 0 {
			return nil, apperr.Validation("final price must be greater than zero")
		}
		q.FinalPrice = req.FinalPrice
	}
	if req.WarehouseID != nil {
		if _, err := e.store.GetWarehouse(ctx, *req.WarehouseID); err != nil {
			return nil, storeErr(err, models.KindWarehouse)
		}
		q.WarehouseID = req.WarehouseID
	}
	if req.PreferredLocation != nil {
		q.PreferredLocation = *req.PreferredLocation
	}
	if req.Duration != nil {
		q.Duration = *req.Duration
	}
	if req.SpecialRequirements != nil {
		q.SpecialRequirements = req.SpecialRequirements
	}
	if req.AssignedTo != nil {
		q.AssignedTo = strPtr(*req.AssignedTo)
	}
	q.UpdatedAt = e.now()

	if err := e.store.UpdateQuote(ctx, q, prev); err != nil {
		return nil, storeErr(err, models.KindQuote)
	}
	e.committed(ctx, actor, models.TransitionEvent{
		Kind: models.KindQuote, Action: models.ActionOverride, EntityID: q.ID, CustomerID: q.CustomerID,
		From: string(prev), To: string(q.Status), Entity: q,
	}, cache.QuoteListKey(q.CustomerID))
	return q, nil
}
