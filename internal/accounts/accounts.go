// Package accounts manages user accounts: guest registration, the caller's
// own profile and admin user management.
package accounts

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/audit"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/policy"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Auditor records account actions and denials
type Auditor interface {
	Record(r audit.Record)
}

// Meta identifies the HTTP request behind an account operation
type Meta struct {
	IP      string
	Headers map[string]string
}

type Service struct {
	users  store.UserStore
	audit  Auditor
	logger *zap.Logger
	clock  func() time.Time
}

func NewService(users store.UserStore, auditor Auditor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  users,
		audit:  auditor,
		logger: logger.Named("accounts"),
		clock:  time.Now,
	}
}

// WithClock overrides the time source
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

func (s *Service) now() time.Time { return s.clock().UTC() }

func (s *Service) record(r audit.Record) {
	if s.audit != nil {
		s.audit.Record(r)
	}
}

// checkRole applies the admin-role rule and audits a denial with the
// request's origin.
func (s *Service) checkRole(role *string, actor models.Actor, action string, meta Meta) error {
	err := policy.CheckRoleAssignment(role)
	if err != nil && apperr.CodeOf(err) == apperr.CodeForbiddenAdminRole {
		s.record(audit.Record{
			Category:  "users",
			Action:    action,
			ActorID:   actor.ID,
			ActorRole: string(actor.Role),
			Outcome:   audit.OutcomeDenied,
			IP:        meta.IP,
			Headers:   meta.Headers,
			Details:   map[string]interface{}{"reason": apperr.CodeForbiddenAdminRole},
		})
	}
	return err
}

func (s *Service) gate(actor models.Actor) error {
	if actor.ID == "" || !actor.IsActive {
		return apperr.Forbidden("account is not active")
	}
	return policy.Authorize(actor.Role, policy.UserManage)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", apperr.Validation("invalid email address")
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", apperr.Validation("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Unexpected("failed to hash password", err)
	}
	return string(hash), nil
}

func storeErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("user")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Validation("a user with this email already exists")
	default:
		return apperr.Unexpected("user store failure", err)
	}
}

func (s *Service) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err == nil && existing.ID != selfID {
		return apperr.Validation("a user with this email already exists")
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return storeErr(err)
	}
	return nil
}

// Register creates an inactive customer account for a guest
func (s *Service) Register(ctx context.Context, req models.RegisterRequest, meta Meta) (*models.User, error) {
	anonymous := models.Actor{ID: "anonymous"}
	if err := s.checkRole(req.Role, anonymous, "register", meta); err != nil {
		return nil, err
	}
	if req.Role != nil && models.UserRole(strings.TrimSpace(*req.Role)) != models.RoleCustomer {
		return nil, apperr.Forbidden("registration creates customer accounts only")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperr.Validation("full name is required")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	now := s.now()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        req.Phone,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleCustomer,
		IsActive:     false,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	s.logger.Info("Guest registered", zap.String("user_id", u.ID))
	return u, nil
}

// Create adds an account on behalf of an admin. Accounts are active unless
// the request says otherwise.
func (s *Service) Create(ctx context.Context, actor models.Actor, req models.UserCreateRequest, meta Meta) (*models.User, error) {
	// the admin-role rule applies whatever the caller's own role is
	if err := s.checkRole(&req.Role, actor, "create", meta); err != nil {
		return nil, err
	}
	if err := s.gate(actor); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperr.Validation("full name is required")
	}
	var hash string
	if req.Password != nil {
		if hash, err = hashPassword(*req.Password); err != nil {
			return nil, err
		}
	}
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	now := s.now()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        req.Phone,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.UserRole(strings.TrimSpace(req.Role)),
		IsActive:     active,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	s.record(audit.Record{
		Category: "users", Action: "create", ActorID: actor.ID, ActorRole: string(actor.Role),
		TargetID: u.ID, Details: map[string]interface{}{"role": string(u.Role)},
	})
	return u, nil
}

func (s *Service) Get(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	if err := s.gate(actor); err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return u, nil
}

// List returns one page of accounts
func (s *Service) List(ctx context.Context, actor models.Actor, params models.UserListParams) ([]models.User, int, error) {
	if err := s.gate(actor); err != nil {
		return nil, 0, err
	}
	params.Normalize()
	if params.Role != "" && !models.UserRole(params.Role).IsValid() {
		return nil, 0, apperr.Validation("invalid role %q", params.Role)
	}
	f := store.UserFilter{
		Role:   params.Role,
		Search: strings.TrimSpace(params.Search),
		Limit:  params.Limit,
		Offset: (params.Page - 1) * params.Limit,
	}
	switch params.Status {
	case "":
	case "active":
		f.IsActive = boolPtr(true)
	case "inactive":
		f.IsActive = boolPtr(false)
	default:
		return nil, 0, apperr.Validation("invalid account status %q", params.Status)
	}
	items, total, err := s.users.ListUsers(ctx, f)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return items, total, nil
}

// Update patches an account. Admin accounts are off limits.
func (s *Service) Update(ctx context.Context, actor models.Actor, id string, req models.UserUpdateRequest, meta Meta) (*models.User, error) {
	if err := s.checkRole(req.Role, actor, "update", meta); err != nil {
		return nil, err
	}
	if err := s.gate(actor); err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	action := policy.AccountModify
	if req.IsActive != nil && !*req.IsActive {
		action = policy.AccountDeactivate
	}
	if err := policy.CheckAccountTarget(actor.ID, u, action); err != nil {
		return nil, err
	}
	if err := s.applyProfile(ctx, u, req); err != nil {
		return nil, err
	}
	if req.Role != nil {
		u.Role = models.UserRole(strings.TrimSpace(*req.Role))
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	u.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	s.record(audit.Record{
		Category: "users", Action: "update", ActorID: actor.ID, ActorRole: string(actor.Role),
		TargetID: u.ID, Details: updateDetails(req),
	})
	return u, nil
}

// Deactivate switches an account off without deleting it
func (s *Service) Deactivate(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	if err := s.gate(actor); err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if err := policy.CheckAccountTarget(actor.ID, u, policy.AccountDeactivate); err != nil {
		return nil, err
	}
	u.IsActive = false
	u.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	s.record(audit.Record{
		Category: "users", Action: "deactivate", ActorID: actor.ID, ActorRole: string(actor.Role), TargetID: u.ID,
	})
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := s.gate(actor); err != nil {
		return err
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if err := policy.CheckAccountTarget(actor.ID, u, policy.AccountDelete); err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return storeErr(err)
	}
	s.record(audit.Record{
		Category: "users", Action: "delete", ActorID: actor.ID, ActorRole: string(actor.Role), TargetID: id,
	})
	return nil
}

// Me returns the caller's own account. Inactive guests may read it.
func (s *Service) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	if actor.ID == "" {
		return nil, apperr.Forbidden("authentication required")
	}
	u, err := s.users.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return u, nil
}

// UpdateMe edits the caller's profile. Role and activation are not
// self-service.
func (s *Service) UpdateMe(ctx context.Context, actor models.Actor, req models.UserUpdateRequest, meta Meta) (*models.User, error) {
	if actor.ID == "" {
		return nil, apperr.Forbidden("authentication required")
	}
	if req.Role != nil {
		if err := s.checkRole(req.Role, actor, "update_self", meta); err != nil {
			return nil, err
		}
		return nil, apperr.Forbidden("you cannot change your own role")
	}
	if req.IsActive != nil {
		return nil, apperr.Forbidden("you cannot change your own activation status")
	}
	u, err := s.users.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	if err := s.applyProfile(ctx, u, req); err != nil {
		return nil, err
	}
	u.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	return u, nil
}

// applyProfile copies email, name and phone from req onto u
func (s *Service) applyProfile(ctx context.Context, u *models.User, req models.UserUpdateRequest) error {
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return err
		}
		if email != u.Email {
			if err := s.ensureEmailFree(ctx, email, u.ID); err != nil {
				return err
			}
			u.Email = email
		}
	}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return apperr.Validation("full name must not be empty")
		}
		u.FullName = name
	}
	if req.Phone != nil {
		if p := strings.TrimSpace(*req.Phone); p == "" {
			u.Phone = nil
		} else {
			u.Phone = &p
		}
	}
	return nil
}

func updateDetails(req models.UserUpdateRequest) map[string]interface{} {
	fields := map[string]interface{}{}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	return fields
}

func boolPtr(b bool) *bool { return &b }
