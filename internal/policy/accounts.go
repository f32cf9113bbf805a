package policy

import (
	"strings"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
)

// CheckRoleAssignment rejects any request body that names the admin role,
// whoever sends it. An unknown role is a validation error.
func CheckRoleAssignment(role *string) error {
	if role == nil {
		return nil
	}
	r := models.UserRole(strings.TrimSpace(*role))
	if r == models.RoleAdmin {
		return apperr.ForbiddenAdminRole()
	}
	if !r.IsValid() {
		return apperr.Validation("invalid role %q", *role)
	}
	return nil
}

// AccountAction is a user-management action on an existing account
type AccountAction int

const (
	AccountModify AccountAction = iota
	AccountDeactivate
	AccountDelete
)

// CheckAccountTarget guards user management: admins are never touched,
// and nobody deactivates or deletes themselves.
func CheckAccountTarget(actorID string, target *models.User, action AccountAction) error {
	if action != AccountModify && target.ID == actorID {
		return apperr.Validation("you cannot deactivate or delete your own account")
	}
	if target.Role == models.RoleAdmin {
		return apperr.Forbidden("admin accounts cannot be modified")
	}
	return nil
}
