package policy

import (
	"errors"
	"testing"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		role models.UserRole
		op   Operation
		ok   bool
	}{
		{models.RoleCustomer, QuoteCreate, true},
		{models.RoleSalesSupport, QuoteCreate, false},
		{models.RolePurchaseSupport, QuoteAssign, true},
		{models.RoleSupervisor, QuoteAssign, false},
		{models.RoleSalesSupport, QuoteApprove, true},
		{models.RoleSupervisor, QuoteReject, true},
		{models.RoleAdmin, QuoteApprove, false},
		{models.RoleSupervisor, BookingConfirm, true},
		{models.RoleSalesSupport, BookingConfirm, false},
		{models.RoleCustomer, BookingCancel, true},
		{models.RoleWarehouse, CargoProcess, true},
		{models.RoleCustomer, CargoProcess, false},
		{models.RoleCustomer, CargoCreate, true},
		{models.RoleWarehouse, DeliveryDispatch, true},
		{models.RoleWarehouse, DeliverySchedule, false},
		{models.RoleAccounts, DeliveryTrack, true},
		{models.RoleAccounts, InvoiceCreate, true},
		{models.RoleSupervisor, InvoiceCreate, false},
		{models.RoleCustomer, InvoicePay, true},
		{models.RoleAccounts, InvoicePay, false},
		{models.RoleSupervisor, BookingOverride, false},
		{models.RoleAdmin, BookingOverride, true},
		{models.RoleAdmin, UserManage, true},
		{models.RoleSupervisor, UserManage, false},
	}
	for _, tc := range cases {
		err := Authorize(tc.role, tc.op)
		if tc.ok {
			assert.NoError(t, err, "%s %s", tc.role, tc.op)
		} else {
			assert.True(t, errors.Is(err, apperr.ErrAuthorization), "%s %s", tc.role, tc.op)
		}
	}
}

func TestAuthorize_UnknownOperationDenied(t *testing.T) {
	assert.Error(t, Authorize(models.RoleAdmin, Operation("quote.teleport")))
}

func TestOnlyAdminOverrides(t *testing.T) {
	for _, op := range []Operation{QuoteOverride, BookingOverride, CargoOverride, DeliveryOverride, InvoiceOverride} {
		assert.Equal(t, []models.UserRole{models.RoleAdmin}, AllowedRoles(op), op)
	}
}

func TestScopeFor_Customer(t *testing.T) {
	s, err := ScopeFor(models.RoleCustomer, "c1", models.KindQuote)
	require.NoError(t, err)
	assert.True(t, s.Allows(&models.Quote{CustomerID: "c1", Status: models.QuoteStatusRejected}))
	assert.False(t, s.Allows(&models.Quote{CustomerID: "c2", Status: models.QuoteStatusPending}))
	assert.Error(t, s.Check(&models.Invoice{CustomerID: "c2"}, models.KindInvoice))
}

func TestScopeFor_StaffSlices(t *testing.T) {
	s, err := ScopeFor(models.RolePurchaseSupport, "p1", models.KindQuote)
	require.NoError(t, err)
	assert.True(t, s.Allows(&models.Quote{Status: models.QuoteStatusPending}))
	assert.False(t, s.Allows(&models.Quote{Status: models.QuoteStatusQuoted}))

	statuses, ok := s.ResolveStatuses(nil)
	assert.True(t, ok)
	assert.Equal(t, []string{"pending"}, statuses)

	_, ok = s.ResolveStatuses([]string{"approved"})
	assert.False(t, ok)

	s, err = ScopeFor(models.RoleSalesSupport, "s1", models.KindQuote)
	require.NoError(t, err)
	statuses, ok = s.ResolveStatuses([]string{"quoted", "rejected"})
	assert.True(t, ok)
	assert.Equal(t, []string{"quoted"}, statuses)
}

func TestScopeFor_WarehouseAssignedQuotes(t *testing.T) {
	s, err := ScopeFor(models.RoleWarehouse, "w1", models.KindQuote)
	require.NoError(t, err)
	mine := "w1"
	other := "w2"
	assert.True(t, s.Allows(&models.Quote{AssignedTo: &mine, Status: models.QuoteStatusQuoted}))
	assert.False(t, s.Allows(&models.Quote{AssignedTo: &other, Status: models.QuoteStatusQuoted}))
	assert.False(t, s.Allows(&models.Quote{Status: models.QuoteStatusPending}))
}

func TestScopeFor_Accounts(t *testing.T) {
	s, err := ScopeFor(models.RoleAccounts, "a1", models.KindInvoice)
	require.NoError(t, err)
	assert.True(t, s.Allows(&models.Invoice{Status: models.InvoiceStatusPaid}))

	statuses, ok := s.ResolveStatuses(nil)
	assert.True(t, ok)
	assert.Equal(t, []string{"sent"}, statuses)

	statuses, ok = s.ResolveStatuses([]string{"paid"})
	assert.True(t, ok)
	assert.Equal(t, []string{"paid"}, statuses)

	_, err = ScopeFor(models.RoleAccounts, "a1", models.KindQuote)
	assert.True(t, errors.Is(err, apperr.ErrAuthorization))
}

func TestScopeFor_Unrestricted(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleSupervisor, models.RoleAdmin} {
		s, err := ScopeFor(role, "x", models.KindInvoice)
		require.NoError(t, err)
		assert.True(t, s.Unrestricted)
		assert.True(t, s.Allows(&models.Invoice{CustomerID: "anyone", Status: models.InvoiceStatusDraft}))
	}
}

func TestCheckOwnerIgnoresStatusSlice(t *testing.T) {
	s, err := ScopeFor(models.RolePurchaseSupport, "p1", models.KindQuote)
	require.NoError(t, err)
	assert.NoError(t, s.CheckOwner(&models.Quote{Status: models.QuoteStatusProcessing}, models.KindQuote))

	c, err := ScopeFor(models.RoleCustomer, "c1", models.KindBooking)
	require.NoError(t, err)
	assert.Error(t, c.CheckOwner(&models.Booking{CustomerID: "c2"}, models.KindBooking))
}

func TestCheckRoleAssignment(t *testing.T) {
	admin := "admin"
	err := CheckRoleAssignment(&admin)
	assert.Equal(t, apperr.CodeForbiddenAdminRole, apperr.CodeOf(err))

	padded := " admin "
	assert.Equal(t, apperr.CodeForbiddenAdminRole, apperr.CodeOf(CheckRoleAssignment(&padded)))

	bogus := "overlord"
	assert.True(t, errors.Is(CheckRoleAssignment(&bogus), apperr.ErrValidation))

	ok := "warehouse"
	assert.NoError(t, CheckRoleAssignment(&ok))
	assert.NoError(t, CheckRoleAssignment(nil))
}

func TestCheckAccountTarget(t *testing.T) {
	admin := &models.User{ID: "a1", Role: models.RoleAdmin}
	otherAdmin := &models.User{ID: "a2", Role: models.RoleAdmin}
	user := &models.User{ID: "u1", Role: models.RoleCustomer}

	assert.NoError(t, CheckAccountTarget("a1", user, AccountDeactivate))
	assert.True(t, errors.Is(CheckAccountTarget("a1", otherAdmin, AccountDeactivate), apperr.ErrAuthorization))
	assert.True(t, errors.Is(CheckAccountTarget("a1", admin, AccountDeactivate), apperr.ErrValidation))
	assert.True(t, errors.Is(CheckAccountTarget("a1", admin, AccountDelete), apperr.ErrValidation))
	assert.True(t, errors.Is(CheckAccountTarget("a1", otherAdmin, AccountModify), apperr.ErrAuthorization))
}
