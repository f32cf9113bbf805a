// Package policy holds the role table that gates every workflow operation
// and the scoping rules applied to reads.
package policy

import (
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
)

// Operation names a gated action
type Operation string

const (
	QuoteCreate   Operation = "quote.create"
	QuoteRead     Operation = "quote.read"
	QuoteAssign   Operation = "quote.assign"
	QuoteApprove  Operation = "quote.approve"
	QuoteReject   Operation = "quote.reject"
	QuoteAccept   Operation = "quote.accept"
	QuotePrice    Operation = "quote.price"
	QuoteOverride Operation = "quote.override"

	BookingCreate   Operation = "booking.create"
	BookingRead     Operation = "booking.read"
	BookingConfirm  Operation = "booking.confirm"
	BookingCancel   Operation = "booking.cancel"
	BookingApprove  Operation = "booking.approve"
	BookingReject   Operation = "booking.reject"
	BookingActivate Operation = "booking.activate"
	BookingComplete Operation = "booking.complete"
	BookingOverride Operation = "booking.override"

	CargoCreate   Operation = "cargo.create"
	CargoRead     Operation = "cargo.read"
	CargoApprove  Operation = "cargo.approve"
	CargoReject   Operation = "cargo.reject"
	CargoProcess  Operation = "cargo.process"
	CargoComplete Operation = "cargo.complete"
	CargoOverride Operation = "cargo.override"

	DeliveryCreate       Operation = "delivery.create"
	DeliveryRead         Operation = "delivery.read"
	DeliverySchedule     Operation = "delivery.schedule"
	DeliveryAssignDriver Operation = "delivery.assign_driver"
	DeliveryDispatch     Operation = "delivery.dispatch"
	DeliveryComplete     Operation = "delivery.complete"
	DeliveryTrack        Operation = "delivery.track"
	DeliveryOverride     Operation = "delivery.override"

	InvoiceCreate      Operation = "invoice.create"
	InvoiceRead        Operation = "invoice.read"
	InvoiceSend        Operation = "invoice.send"
	InvoiceMarkPaid    Operation = "invoice.mark_paid"
	InvoiceMarkOverdue Operation = "invoice.mark_overdue"
	InvoicePay         Operation = "invoice.pay"
	InvoiceCancel      Operation = "invoice.cancel"
	InvoiceDelete      Operation = "invoice.delete"
	InvoiceOverride    Operation = "invoice.override"

	WarehouseRead  Operation = "warehouse.read"
	WarehouseWrite Operation = "warehouse.write"

	UserManage     Operation = "user.manage"
	DashboardStats Operation = "dashboard.stats"
)

const (
	customer        = models.RoleCustomer
	purchaseSupport = models.RolePurchaseSupport
	salesSupport    = models.RoleSalesSupport
	supervisor      = models.RoleSupervisor
	warehouse       = models.RoleWarehouse
	accounts        = models.RoleAccounts
	admin           = models.RoleAdmin
)

var everyone = models.AllRoles

// table maps each operation to the roles allowed to perform it.
// Ownership and status slices are enforced separately by ScopeFor.
var table = map[Operation][]models.UserRole{
	QuoteCreate:   {customer},
	QuoteRead:     {customer, purchaseSupport, salesSupport, supervisor, warehouse, admin},
	QuoteAssign:   {purchaseSupport},
	QuoteApprove:  {salesSupport, supervisor},
	QuoteReject:   {salesSupport, supervisor},
	QuoteAccept:   {customer},
	QuotePrice:    {customer, purchaseSupport, salesSupport, supervisor, admin},
	QuoteOverride: {admin},

	BookingCreate:   {customer},
	BookingRead:     everyone,
	BookingConfirm:  {supervisor, admin},
	BookingCancel:   {supervisor, admin, customer},
	BookingApprove:  {customer},
	BookingReject:   {supervisor, admin},
	BookingActivate: {warehouse, supervisor, admin},
	BookingComplete: {warehouse, supervisor, admin},
	BookingOverride: {admin},

	CargoCreate:   everyone,
	CargoRead:     {customer, purchaseSupport, salesSupport, supervisor, warehouse, admin},
	CargoApprove:  {supervisor, admin},
	CargoReject:   {supervisor, admin},
	CargoProcess:  {warehouse, supervisor, admin},
	CargoComplete: {warehouse, supervisor, admin},
	CargoOverride: {admin},

	DeliveryCreate:       {customer},
	DeliveryRead:         {customer, purchaseSupport, salesSupport, supervisor, warehouse, admin},
	DeliverySchedule:     {supervisor, admin},
	DeliveryAssignDriver: {supervisor, admin},
	DeliveryDispatch:     {warehouse, supervisor, admin},
	DeliveryComplete:     {warehouse, supervisor, admin},
	DeliveryTrack:        everyone,
	DeliveryOverride:     {admin},

	InvoiceCreate:      {accounts, admin},
	InvoiceRead:        {customer, accounts, supervisor, admin},
	InvoiceSend:        {accounts, admin},
	InvoiceMarkPaid:    {accounts, admin},
	InvoiceMarkOverdue: {accounts, admin},
	InvoicePay:         {customer},
	InvoiceCancel:      {accounts, admin},
	InvoiceDelete:      {accounts, admin},
	InvoiceOverride:    {admin},

	WarehouseRead:  everyone,
	WarehouseWrite: {admin},

	UserManage:     {admin},
	DashboardStats: {supervisor, admin, accounts},
}

// Authorize returns an authorization error unless role may perform op.
// Unknown operations are denied.
func Authorize(role models.UserRole, op Operation) error {
	for _, r := range table[op] {
		if r == role {
			return nil
		}
	}
	return apperr.Forbidden("role %q is not permitted to perform %s", role, op)
}

// AllowedRoles returns a copy of the roles allowed for op
func AllowedRoles(op Operation) []models.UserRole {
	roles := table[op]
	out := make([]models.UserRole, len(roles))
	copy(out, roles)
	return out
}

// Operations lists every operation in the table
func Operations() []Operation {
	ops := make([]Operation, 0, len(table))
	for op := range table {
		ops = append(ops, op)
	}
	return ops
}
