package models

import (
	"time"
)

// UserRole represents the user role enum
type UserRole string

const (
	RoleCustomer        UserRole = "customer"
	RolePurchaseSupport UserRole = "purchase_support"
	RoleSalesSupport    UserRole = "sales_support"
	RoleSupervisor      UserRole = "supervisor"
	RoleWarehouse       UserRole = "warehouse"
	RoleAccounts        UserRole = "accounts"
	RoleAdmin           UserRole = "admin"
)

// AllRoles lists every role in declaration order
var AllRoles = []UserRole{
	RoleCustomer, RolePurchaseSupport, RoleSalesSupport, RoleSupervisor,
	RoleWarehouse, RoleAccounts, RoleAdmin,
}

// IsValid checks if the role is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleCustomer, RolePurchaseSupport, RoleSalesSupport, RoleSupervisor,
		RoleWarehouse, RoleAccounts, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role belongs to an internal team member
func (r UserRole) IsStaff() bool {
	return r.IsValid() && r != RoleCustomer
}

// User represents an account in the system
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         UserRole  `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	PasswordHash string    `json:"-" db:"password_hash"` // never exposed
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest is the public guest-customer sign up payload
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName string  `json:"full_name" binding:"required"`
	Phone    *string `json:"phone,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// UserCreateRequest represents user creation request
type UserCreateRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	FullName string  `json:"full_name" binding:"required"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     string  `json:"role" binding:"required"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UserUpdateRequest represents user update request
type UserUpdateRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UserListParams filters the admin user listing
type UserListParams struct {
	ListParams
	Role string `form:"role"`
}
