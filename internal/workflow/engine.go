// Package workflow runs the quote, booking, cargo, delivery and invoice
// state machines. Every operation authorizes the actor, applies the
// transition table, persists with a compare-and-set on the previous status
// and then fans the committed change out to the cache, notifications, the
// event stream and the audit trail.
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/audit"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/cache"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/capacity"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/events"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/policy"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/pricing"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives committed transitions. Implementations must not block.
type Notifier interface {
	Notify(evt models.TransitionEvent)
}

// Auditor records privileged actions
type Auditor interface {
	Record(r audit.Record)
}

// Deps wires the engine. Store is required; everything else has a no-op default.
type Deps struct {
	Store    store.Store
	Ledger   *capacity.Ledger
	Pricer   *pricing.Calculator
	Notifier Notifier
	Cache    cache.Cache
	Events   events.Publisher
	Audit    Auditor
	Logger   *zap.Logger
	Clock    func() time.Time
}

type Engine struct {
	store    store.Store
	ledger   *capacity.Ledger
	pricer   *pricing.Calculator
	notifier Notifier
	cache    cache.Cache
	events   events.Publisher
	audit    Auditor
	logger   *zap.Logger
	clock    func() time.Time
}

type nopNotifier struct{}

func (nopNotifier) Notify(models.TransitionEvent) {}

type nopAuditor struct{}

func (nopAuditor) Record(audit.Record) {}

type nopCache struct{}

func (nopCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }
func (nopCache) Delete(context.Context, ...string) error { return nil }
func (nopCache) Version(context.Context, string) (int64, error) { return 0, nil }
func (nopCache) SetJSONIfVersion(context.Context, string, interface{}, int64) (bool, error) {
	return false, nil
}

func New(d Deps) *Engine {
	e := &Engine{
		store:    d.Store,
		ledger:   d.Ledger,
		pricer:   d.Pricer,
		notifier: d.Notifier,
		cache:    d.Cache,
		events:   d.Events,
		audit:    d.Audit,
		logger:   d.Logger,
		clock:    d.Clock,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.logger = e.logger.Named("workflow")
	if e.ledger == nil {
		e.ledger = capacity.NewLedger(d.Store, e.logger)
	}
	if e.pricer == nil {
		e.pricer = pricing.NewCalculator()
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}
	if e.cache == nil {
		e.cache = nopCache{}
	}
	if e.events == nil {
		e.events = events.Nop{}
	}
	if e.audit == nil {
		e.audit = nopAuditor{}
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e
}

func (e *Engine) now() time.Time { return e.clock().UTC() }

func newID() string { return uuid.NewString() }

// gate checks the actor may perform op at all
func (e *Engine) gate(actor models.Actor, op policy.Operation) error {
	if actor.ID == "" {
		return apperr.Forbidden("missing actor")
	}
	if !actor.IsActive {
		return apperr.Forbidden("account is inactive")
	}
	return policy.Authorize(actor.Role, op)
}

// authorize gates op by role and resolves the actor's scope over kind
func (e *Engine) authorize(actor models.Actor, op policy.Operation, kind models.EntityKind) (policy.Scope, error) {
	if err := e.gate(actor, op); err != nil {
		return policy.Scope{}, err
	}
	return policy.ScopeFor(actor.Role, actor.ID, kind)
}

// storeErr translates persistence errors into the application taxonomy
func storeErr(err error, kind models.EntityKind) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(string(kind))
	case errors.Is(err, store.ErrStatusConflict):
		return apperr.Precondition("%s was modified concurrently, reload and retry", kind)
	case errors.Is(err, store.ErrInsufficientSpace):
		return apperr.Precondition("insufficient space")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Validation("%s already exists", kind)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Unexpected("failed to access "+string(kind)+" records", err)
}

// committed runs after a write is durable. Cache invalidation is synchronous
// so the next read sees the change; notification and publishing never fail
// the caller.
func (e *Engine) committed(ctx context.Context, actor models.Actor, evt models.TransitionEvent, invalidate ...string) {
	evt.ActorID = actor.ID
	evt.ActorRole = actor.Role
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = e.now()
	}

	if len(invalidate) > 0 {
		if err := e.cache.Delete(ctx, invalidate...); err != nil {
			e.logger.Error("Cache invalidation failed", zap.Strings("keys", invalidate), zap.Error(err))
		}
	}

	e.logger.Info("transition committed",
		zap.String("kind", string(evt.Kind)),
		zap.String("action", evt.Action),
		zap.String("id", evt.EntityID),
		zap.String("from", evt.From),
		zap.String("to", evt.To),
		zap.String("by", actor.ID),
		zap.String("role", string(actor.Role)),
	)

	e.notifier.Notify(evt)

	if err := e.events.Publish(ctx, evt); err != nil {
		e.logger.Error("Failed to publish transition event", zap.String("id", evt.EntityID), zap.Error(err))
	}

	if evt.Action == models.ActionOverride || evt.Action == models.ActionDelete {
		details := map[string]interface{}{}
		if evt.From != "" || evt.To != "" {
			details["from"] = evt.From
			details["to"] = evt.To
		}
		e.audit.Record(audit.Record{
			At:        evt.OccurredAt,
			Category:  string(evt.Kind),
			Action:    evt.Action,
			ActorID:   actor.ID,
			ActorRole: string(actor.Role),
			TargetID:  evt.EntityID,
			Details:   details,
		})
	}
}

// listFilter converts list params for kind into a store filter bounded by scope.
// ok is false when the scope rules out every requested status.
func listFilter(params *models.ListParams, scope policy.Scope, validate func([]string) error) (store.Filter, bool, error) {
	params.Normalize()
	f, err := store.FilterFromParams(*params)
	if err != nil {
		return f, false, apperr.Validation("invalid date filter, expected YYYY-MM-DD")
	}
	requested := store.SplitStatuses(params.Status)
	if err := validate(requested); err != nil {
		return f, false, err
	}
	statuses, ok := scope.ResolveStatuses(requested)
	if !ok {
		return f, false, nil
	}
	f.Statuses = statuses
	f.CustomerID = scope.CustomerID
	f.AssignedTo = scope.AssignedTo
	return f, true, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func rejection(reason string) string {
	if reason == "" {
		return "Rejected"
	}
	return "Rejected: " + reason
}
