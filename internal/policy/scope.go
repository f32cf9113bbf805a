package policy

import (
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
)

// Record is the view of an entity the scope rules need
type Record interface {
	OwnerID() string
	StatusValue() string
	AssigneeID() string
}

// Scope restricts which records of one kind an actor may see.
// A nil Statuses slice means any status.
type Scope struct {
	Unrestricted    bool
	CustomerID      string
	AssignedTo      string
	Statuses        []string
	DefaultStatuses []string
}

type rule struct {
	denied   bool
	own      bool
	assigned bool
	statuses []string
	defaults []string
}

var (
	open     = rule{}
	own      = rule{own: true}
	denied   = rule{denied: true}
	assigned = rule{assigned: true}
)

func slice(statuses ...string) rule { return rule{statuses: statuses} }

var scopes = map[models.UserRole]map[models.EntityKind]rule{
	models.RoleCustomer: {
		models.KindQuote: own, models.KindBooking: own, models.KindCargo: own,
		models.KindDelivery: own, models.KindInvoice: own,
	},
	models.RolePurchaseSupport: {
		models.KindQuote:    slice("pending"),
		models.KindBooking:  slice("pending"),
		models.KindCargo:    slice("submitted"),
		models.KindDelivery: slice("requested"),
		models.KindInvoice:  denied,
	},
	models.RoleSalesSupport: {
		models.KindQuote:    slice("processing", "quoted"),
		models.KindBooking:  slice("pending", "confirmed"),
		models.KindCargo:    slice("submitted", "approved"),
		models.KindDelivery: slice("requested", "scheduled"),
		models.KindInvoice:  denied,
	},
	models.RoleWarehouse: {
		models.KindQuote:    assigned,
		models.KindBooking:  slice("confirmed", "active"),
		models.KindCargo:    slice("approved", "processing"),
		models.KindDelivery: slice("scheduled", "in_transit"),
		models.KindInvoice:  denied,
	},
	models.RoleAccounts: {
		models.KindQuote:    denied,
		models.KindBooking:  open,
		models.KindCargo:    denied,
		models.KindDelivery: denied,
		models.KindInvoice:  {defaults: []string{"sent"}},
	},
}

// ScopeFor resolves the scope of role over kind. Supervisors and admins are
// unrestricted; a role with no access to kind gets an authorization error.
func ScopeFor(role models.UserRole, actorID string, kind models.EntityKind) (Scope, error) {
	if role == models.RoleSupervisor || role == models.RoleAdmin {
		return Scope{Unrestricted: true}, nil
	}
	kinds, ok := scopes[role]
	if !ok {
		return Scope{}, apperr.Forbidden("role %q has no access to %s records", role, kind)
	}
	r, ok := kinds[kind]
	if !ok || r.denied {
		return Scope{}, apperr.Forbidden("role %q has no access to %s records", role, kind)
	}

	s := Scope{Statuses: r.statuses, DefaultStatuses: r.defaults}
	switch {
	case r.own:
		s.CustomerID = actorID
	case r.assigned:
		s.AssignedTo = actorID
	case r.statuses == nil:
		s.Unrestricted = true
	}
	return s, nil
}

// Allows reports whether a single record falls inside the scope
func (s Scope) Allows(rec Record) bool {
	if s.CustomerID != "" && rec.OwnerID() != s.CustomerID {
		return false
	}
	if s.AssignedTo != "" && rec.AssigneeID() != s.AssignedTo {
		return false
	}
	if s.Statuses == nil {
		return true
	}
	return contains(s.Statuses, rec.StatusValue())
}

// Check returns an authorization error when rec is outside the scope
func (s Scope) Check(rec Record, kind models.EntityKind) error {
	if !s.Allows(rec) {
		return apperr.Forbidden("access to this %s is not permitted", kind)
	}
	return nil
}

// CheckOwner enforces only the ownership part of the scope. Transitions use it
// since the status slices describe what staff see, while the transition
// tables decide what they may change.
func (s Scope) CheckOwner(rec Record, kind models.EntityKind) error {
	if s.CustomerID != "" && rec.OwnerID() != s.CustomerID {
		return apperr.Forbidden("access to this %s is not permitted", kind)
	}
	return nil
}

// ResolveStatuses narrows a requested status filter to the scope. An empty
// request yields the default view. ok is false when nothing can match.
func (s Scope) ResolveStatuses(requested []string) (statuses []string, ok bool) {
	if len(requested) == 0 {
		if s.DefaultStatuses != nil {
			return s.DefaultStatuses, true
		}
		return s.Statuses, true
	}
	if s.Statuses == nil {
		return requested, true
	}
	for _, st := range requested {
		if contains(s.Statuses, st) {
			statuses = append(statuses, st)
		}
	}
	return statuses, len(statuses) > 0
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
