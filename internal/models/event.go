package models

import "time"

// Action names used in transition events
const (
	ActionCreate       = "create"
	ActionAssign       = "assign"
	ActionApprove      = "approve"
	ActionReject       = "reject"
	ActionAccept       = "accept"
	ActionConfirm      = "confirm"
	ActionCancel       = "cancel"
	ActionActivate     = "activate"
	ActionComplete     = "complete"
	ActionProcess      = "process"
	ActionSchedule     = "schedule"
	ActionAssignDriver = "assign_driver"
	ActionDispatch     = "dispatch"
	ActionSend         = "send"
	ActionMarkPaid     = "mark_paid"
	ActionMarkOverdue  = "mark_overdue"
	ActionPay          = "pay"
	ActionDelete       = "delete"
	ActionOverride     = "override"
)

// TransitionEvent describes a committed change to a workflow entity. It is
// fanned out to notifications, the event stream and the audit trail.
type TransitionEvent struct {
	Kind       EntityKind  `json:"kind"`
	Action     string      `json:"action"`
	EntityID   string      `json:"entity_id"`
	CustomerID string      `json:"customer_id,omitempty"`
	ActorID    string      `json:"actor_id"`
	ActorRole  UserRole    `json:"actor_role"`
	From       string      `json:"from,omitempty"`
	To         string      `json:"to,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Entity     interface{} `json:"entity,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}
