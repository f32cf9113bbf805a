package workflow

import (
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
)

// Machine is a transition table (state, action) -> state for one entity
type Machine[S ~string] struct {
	kind   models.EntityKind
	states []S
	edges  map[string]map[S]S
}

func newMachine[S ~string](kind models.EntityKind, states []S) *Machine[S] {
	return &Machine[S]{kind: kind, states: states, edges: make(map[string]map[S]S)}
}

// on adds action: from... -> to. No from states means every state.
func (m *Machine[S]) on(action string, to S, from ...S) *Machine[S] {
	if len(from) == 0 {
		from = m.states
	}
	if m.edges[action] == nil {
		m.edges[action] = make(map[S]S)
	}
	for _, f := range from {
		m.edges[action][f] = to
	}
	return m
}

// Next returns the target state or a precondition error when the table has no row
func (m *Machine[S]) Next(from S, action string) (S, error) {
	if to, ok := m.edges[action][from]; ok {
		return to, nil
	}
	return from, apperr.Precondition("cannot %s a %s %s", action, string(from), m.kind)
}

// Can reports whether action is allowed from state
func (m *Machine[S]) Can(from S, action string) bool {
	_, ok := m.edges[action][from]
	return ok
}

// Valid reports membership in the enumerated state set
func (m *Machine[S]) Valid(s S) bool {
	for _, st := range m.states {
		if st == s {
			return true
		}
	}
	return false
}

// Parse validates a raw status from a request
func (m *Machine[S]) Parse(raw string) (S, error) {
	s := S(raw)
	if !m.Valid(s) {
		return s, apperr.Validation("invalid %s status %q", m.kind, raw)
	}
	return s, nil
}

// ParseAll validates a list of status filters
func (m *Machine[S]) ParseAll(raw []string) error {
	for _, r := range raw {
		if _, err := m.Parse(r); err != nil {
			return err
		}
	}
	return nil
}

var quoteMachine = newMachine(models.KindQuote, models.QuoteStatuses).
	on(models.ActionAssign, models.QuoteStatusProcessing, models.QuoteStatusPending, models.QuoteStatusProcessing).
	on(models.ActionApprove, models.QuoteStatusQuoted, models.QuoteStatusProcessing).
	on(models.ActionReject, models.QuoteStatusRejected, models.QuoteStatusProcessing, models.QuoteStatusQuoted).
	on(models.ActionAccept, models.QuoteStatusApproved, models.QuoteStatusQuoted)

// Booking approve keeps the booking pending. This mirrors the behaviour
// customers already rely on; confirm is the staff transition.
var bookingMachine = newMachine(models.KindBooking, models.BookingStatuses).
	on(models.ActionConfirm, models.BookingStatusConfirmed, models.BookingStatusPending).
	on(models.ActionApprove, models.BookingStatusPending, models.BookingStatusPending).
	on(models.ActionActivate, models.BookingStatusActive, models.BookingStatusConfirmed).
	on(models.ActionComplete, models.BookingStatusCompleted, models.BookingStatusActive).
	on(models.ActionCancel, models.BookingStatusCancelled, models.BookingStatusPending, models.BookingStatusConfirmed).
	on(models.ActionReject, models.BookingStatusCancelled)

var cargoMachine = newMachine(models.KindCargo, models.CargoStatuses).
	on(models.ActionApprove, models.CargoStatusApproved, models.CargoStatusSubmitted).
	on(models.ActionReject, models.CargoStatusSubmitted, models.CargoStatusSubmitted, models.CargoStatusApproved).
	on(models.ActionProcess, models.CargoStatusProcessing).
	on(models.ActionComplete, models.CargoStatusCompleted)

var deliveryMachine = newMachine(models.KindDelivery, models.DeliveryStatuses).
	on(models.ActionSchedule, models.DeliveryStatusScheduled, models.DeliveryStatusRequested, models.DeliveryStatusScheduled).
	on(models.ActionDispatch, models.DeliveryStatusInTransit, models.DeliveryStatusScheduled).
	on(models.ActionComplete, models.DeliveryStatusDelivered, models.DeliveryStatusInTransit)

var invoiceMachine = newMachine(models.KindInvoice, models.InvoiceStatuses).
	on(models.ActionSend, models.InvoiceStatusSent, models.InvoiceStatusDraft).
	on(models.ActionMarkPaid, models.InvoiceStatusPaid, models.InvoiceStatusSent, models.InvoiceStatusOverdue).
	on(models.ActionMarkOverdue, models.InvoiceStatusOverdue, models.InvoiceStatusSent).
	on(models.ActionPay, models.InvoiceStatusPaid, models.InvoiceStatusSent, models.InvoiceStatusOverdue).
	on(models.ActionCancel, models.InvoiceStatusCancelled, models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusOverdue)
