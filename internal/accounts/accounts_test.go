package accounts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/audit"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingAuditor struct {
	mu      sync.Mutex
	records []audit.Record
}

func (r *recordingAuditor) Record(rec audit.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recordingAuditor) last() audit.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[len(r.records)-1]
}

var (
	adminActor = models.Actor{ID: "adm-1", Role: models.RoleAdmin, IsActive: true}
	staffActor = models.Actor{ID: "sup-1", Role: models.RoleSupervisor, IsActive: true}
	meta       = Meta{IP: "203.0.113.7", Headers: map[string]string{"User-Agent": "curl/8.0"}}
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func newService(t *testing.T) (*Service, *memory.Store, *recordingAuditor) {
	t.Helper()
	st := memory.New()
	aud := &recordingAuditor{}
	svc := NewService(st, aud, nil).WithClock(func() time.Time {
		return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	})
	return svc, st, aud
}

func TestRegister_CreatesInactiveCustomer(t *testing.T) {
	svc, st, _ := newService(t)
	u, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: " Guest@Example.com ", Password: "s3cretpass", FullName: "Guest User",
	}, meta)
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", u.Email)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.False(t, u.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cretpass")))

	stored, err := st.GetUserByEmail(context.Background(), "guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)

	_, err = svc.Register(context.Background(), models.RegisterRequest{
		Email: "guest@example.com", Password: "another-pass", FullName: "Dup",
	}, meta)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegister_AdminRoleIsDeniedAndAudited(t *testing.T) {
	svc, _, aud := newService(t)
	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "x@example.com", Password: "s3cretpass", FullName: "X", Role: strp("admin"),
	}, meta)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbiddenAdminRole, apperr.CodeOf(err))

	rec := aud.last()
	assert.Equal(t, audit.OutcomeDenied, rec.Outcome)
	assert.Equal(t, "203.0.113.7", rec.IP)
	assert.Equal(t, "curl/8.0", rec.Headers["User-Agent"])
}

func TestRegister_StaffRoleIsRefused(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "x@example.com", Password: "s3cretpass", FullName: "X", Role: strp("supervisor"),
	}, meta)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
}

func TestCreate_RequiresAdmin(t *testing.T) {
	svc, _, _ := newService(t)
	req := models.UserCreateRequest{Email: "w@example.com", FullName: "Worker", Role: "warehouse"}

	_, err := svc.Create(context.Background(), staffActor, req, meta)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	u, err := svc.Create(context.Background(), adminActor, req, meta)
	require.NoError(t, err)
	assert.Equal(t, models.RoleWarehouse, u.Role)
	assert.True(t, u.IsActive)
}

func TestCreate_AdminRoleForbiddenEvenForAdmins(t *testing.T) {
	svc, _, aud := newService(t)
	_, err := svc.Create(context.Background(), adminActor, models.UserCreateRequest{
		Email: "boss@example.com", FullName: "Boss", Role: "admin",
	}, meta)
	assert.Equal(t, apperr.CodeForbiddenAdminRole, apperr.CodeOf(err))
	assert.Equal(t, audit.OutcomeDenied, aud.last().Outcome)
}

func TestAdminRoleDeniedForNonAdminCallers(t *testing.T) {
	svc, st, aud := newService(t)
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "u-1", Email: "u1@example.com", Role: models.RoleCustomer, IsActive: true}))

	_, err := svc.Create(ctx, staffActor, models.UserCreateRequest{
		Email: "boss@example.com", FullName: "Boss", Role: "admin",
	}, meta)
	assert.Equal(t, apperr.CodeForbiddenAdminRole, apperr.CodeOf(err))
	rec := aud.last()
	assert.Equal(t, audit.OutcomeDenied, rec.Outcome)
	assert.Equal(t, "sup-1", rec.ActorID)
	assert.Equal(t, "203.0.113.7", rec.IP)
	assert.Equal(t, "curl/8.0", rec.Headers["User-Agent"])

	_, err = svc.Update(ctx, staffActor, "u-1", models.UserUpdateRequest{Role: strp("admin")}, meta)
	assert.Equal(t, apperr.CodeForbiddenAdminRole, apperr.CodeOf(err))
	assert.Equal(t, "update", aud.last().Action)
	assert.Equal(t, audit.OutcomeDenied, aud.last().Outcome)

	u, err := st.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, u.Role)
}

func TestDeactivate(t *testing.T) {
	svc, st, aud := newService(t)
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "adm-2", Email: "a2@example.com", Role: models.RoleAdmin, IsActive: true}))
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "u-1", Email: "u1@example.com", Role: models.RoleWarehouse, IsActive: true}))

	u, err := svc.Deactivate(ctx, adminActor, "u-1")
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	stored, err := st.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, "deactivate", aud.last().Action)

	_, err = svc.Deactivate(ctx, adminActor, "adm-2")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
	other, err := st.GetUser(ctx, "adm-2")
	require.NoError(t, err)
	assert.True(t, other.IsActive)

	_, err = svc.Deactivate(ctx, staffActor, "u-1")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
}

func TestUpdate_TargetRules(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "adm-2", Email: "a2@example.com", Role: models.RoleAdmin, IsActive: true}))
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "adm-1", Email: "a1@example.com", Role: models.RoleAdmin, IsActive: true}))
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "u-1", Email: "u1@example.com", FullName: "U", Role: models.RoleCustomer}))

	_, err := svc.Update(ctx, adminActor, "adm-2", models.UserUpdateRequest{FullName: strp("Renamed")}, meta)
	assert.ErrorIs(t, err, apperr.ErrAuthorization, "admin accounts are not modifiable")

	_, err = svc.Deactivate(ctx, adminActor, "adm-1")
	assert.ErrorIs(t, err, apperr.ErrValidation, "self deactivation")

	err = svc.Delete(ctx, adminActor, "adm-1")
	assert.ErrorIs(t, err, apperr.ErrValidation, "self deletion")

	u, err := svc.Update(ctx, adminActor, "u-1", models.UserUpdateRequest{
		Role: strp("sales_support"), IsActive: boolp(true),
	}, meta)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSalesSupport, u.Role)
	assert.True(t, u.IsActive)

	_, err = svc.Update(ctx, adminActor, "u-1", models.UserUpdateRequest{Role: strp("admin")}, meta)
	assert.Equal(t, apperr.CodeForbiddenAdminRole, apperr.CodeOf(err))

	require.NoError(t, svc.Delete(ctx, adminActor, "u-1"))
	_, err = svc.Get(ctx, adminActor, "u-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestList_FiltersByRoleAndStatus(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []models.User{
		{ID: "1", Email: "c1@example.com", FullName: "Cara", Role: models.RoleCustomer, IsActive: true, CreatedAt: base},
		{ID: "2", Email: "c2@example.com", FullName: "Cole", Role: models.RoleCustomer, CreatedAt: base.Add(time.Hour)},
		{ID: "3", Email: "w1@example.com", FullName: "Wes", Role: models.RoleWarehouse, IsActive: true, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		require.NoError(t, st.CreateUser(ctx, &seed[i]))
	}

	items, total, err := svc.List(ctx, adminActor, models.UserListParams{Role: "customer"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	items, total, err = svc.List(ctx, adminActor, models.UserListParams{ListParams: models.ListParams{Status: "inactive"}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "2", items[0].ID)

	_, _, err = svc.List(ctx, adminActor, models.UserListParams{Role: "pilot"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateMe(t *testing.T) {
	svc, st, aud := newService(t)
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "cust-1", Email: "c@example.com", FullName: "C", Role: models.RoleCustomer}))
	me := models.Actor{ID: "cust-1", Role: models.RoleCustomer}

	u, err := svc.UpdateMe(ctx, me, models.UserUpdateRequest{FullName: strp("Cee"), Phone: strp("+15550100")}, meta)
	require.NoError(t, err)
	assert.Equal(t, "Cee", u.FullName)
	require.NotNil(t, u.Phone)

	_, err = svc.UpdateMe(ctx, me, models.UserUpdateRequest{Role: strp("supervisor")}, meta)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = svc.UpdateMe(ctx, me, models.UserUpdateRequest{Role: strp("admin")}, meta)
	assert.Equal(t, apperr.CodeForbiddenAdminRole, apperr.CodeOf(err))
	assert.Equal(t, "cust-1", aud.last().ActorID)

	got, err := svc.Me(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, "Cee", got.FullName)
}
