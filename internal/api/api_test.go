package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/accounts"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/audit"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store/memory"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// setGinTestMode ensures Gin does not write noisy logs during tests
func setGinTestMode() { gin.SetMode(gin.TestMode) }

type recordingAuditor struct {
	mu      sync.Mutex
	records []audit.Record
}

func (r *recordingAuditor) Record(rec audit.Record) {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
}

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	audits *recordingAuditor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	setGinTestMode()
	st := memory.New()
	require.NoError(t, st.CreateWarehouse(context.Background(), &models.Warehouse{
		ID: "wh-main", Name: "Main", Location: "Hamburg", StorageType: models.StorageDry,
		TotalSpace: 500, AvailableSpace: 500, PricePerSqFt: 2, IsActive: true,
	}))
	audits := &recordingAuditor{}
	engine := workflow.New(workflow.Deps{Store: st, Audit: audits})
	accountSvc := accounts.NewService(st, audits, zap.NewNop())
	h := NewHandler(engine, accountSvc, st, zap.NewNop(), 5*time.Second)
	return &testServer{
		router: NewRouter(h, testSecret, zap.NewNop(), []string{"*"}),
		store:  st,
		audits: audits,
	}
}

func signToken(t *testing.T, id string, role models.UserRole) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": id,
		"email":   id + "@example.com",
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
		Data    T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestLiveEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/live", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
}

func TestReadyEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/quotes", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", w.Code)
	}
}

func TestAuthMiddleware_RejectsWrongSecret(t *testing.T) {
	s := newTestServer(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "cust-1", "role": "customer"})
	signed, err := token.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/quotes", signed, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RejectsUnknownRole(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/quotes", signToken(t, "x-1", models.UserRole("janitor")), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MissingSecret(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.Use(AuthMiddleware(""))
	r.GET("/secure", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthMiddleware_ValidJWTResolvesActor(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/secure", func(c *gin.Context) {
		actor, _ := GetActor(c)
		c.JSON(http.StatusOK, actor)
	})

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "sup-1", models.RoleSupervisor))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var actor models.Actor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actor))
	assert.Equal(t, "sup-1", actor.ID)
	assert.Equal(t, models.RoleSupervisor, actor.Role)
	assert.True(t, actor.IsActive)
}

func TestRoleGate_CustomerCannotListUsers(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/users", signToken(t, "cust-1", models.RoleCustomer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", decodeError(t, w).Error)
}

func TestRoleGate_CustomerCannotApproveQuote(t *testing.T) {
	s := newTestServer(t)
	cust := signToken(t, "cust-1", models.RoleCustomer)
	w := s.do(t, http.MethodPost, "/api/quotes", cust, models.CreateQuoteRequest{
		StorageType: models.StorageDry, RequiredSpace: 10, PreferredLocation: "Hamburg", Duration: "1 month",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	q := decodeData[models.Quote](t, w)

	w = s.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/approve", cust, models.ApproveQuoteRequest{FinalPrice: 10, WarehouseID: "wh-main"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegister_AdminRoleIsRefusedAndAudited(t *testing.T) {
	s := newTestServer(t)
	role := "admin"
	w := s.do(t, http.MethodPost, "/api/register", "", models.RegisterRequest{
		Email: "guest@example.com", Password: "long-enough", FullName: "Guest", Role: &role,
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperr.CodeForbiddenAdminRole, decodeError(t, w).Error)

	s.audits.mu.Lock()
	defer s.audits.mu.Unlock()
	require.Len(t, s.audits.records, 1)
	assert.Equal(t, audit.OutcomeDenied, s.audits.records[0].Outcome)
}

func TestRegister_CreatesInactiveCustomer(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/register", "", models.RegisterRequest{
		Email: "Guest@Example.com", Password: "long-enough", FullName: "Guest",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	u := decodeData[models.User](t, w)
	assert.Equal(t, "guest@example.com", u.Email)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.False(t, u.IsActive)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestInvalidBodyIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/quotes", signToken(t, "cust-1", models.RoleCustomer), map[string]interface{}{
		"storage_type": "dry",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request data", decodeError(t, w).Error)
}

func TestUnknownQuoteIsNotFound(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/quotes/missing", signToken(t, "sup-1", models.RoleSupervisor), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckAvailability_RejectsBadSpace(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/warehouses/wh-main/availability?space=abc", signToken(t, "cust-1", models.RoleCustomer), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteToBookingFlow(t *testing.T) {
	s := newTestServer(t)
	cust := signToken(t, "cust-1", models.RoleCustomer)
	purchaser := signToken(t, "ps-1", models.RolePurchaseSupport)
	sales := signToken(t, "ss-1", models.RoleSalesSupport)
	supervisor := signToken(t, "sup-1", models.RoleSupervisor)

	w := s.do(t, http.MethodPost, "/api/quotes", cust, models.CreateQuoteRequest{
		StorageType: models.StorageDry, RequiredSpace: 40, PreferredLocation: "Hamburg", Duration: "3 months",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	q := decodeData[models.Quote](t, w)
	assert.Equal(t, "cust-1", q.CustomerID)

	w = s.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/assign", purchaser, models.AssignQuoteRequest{AssignedTo: "wh-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/approve", sales, models.ApproveQuoteRequest{FinalPrice: 80, WarehouseID: "wh-main"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	w = s.do(t, http.MethodPost, "/api/bookings", cust, models.CreateBookingRequest{
		QuoteID: q.ID, StartDate: start, EndDate: start.AddDate(0, 3, 0),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decodeData[models.Booking](t, w)
	assert.Equal(t, models.BookingStatusPending, b.Status)

	w = s.do(t, http.MethodPost, "/api/bookings/"+b.ID+"/confirm", supervisor, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	b = decodeData[models.Booking](t, w)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)

	wh, err := s.store.GetWarehouse(context.Background(), "wh-main")
	require.NoError(t, err)
	assert.Equal(t, 460.0, wh.AvailableSpace)

	// the customer sees only their own bookings
	w = s.do(t, http.MethodGet, "/api/bookings", signToken(t, "cust-2", models.RoleCustomer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.ListResponse[models.Booking]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)

	w = s.do(t, http.MethodGet, "/api/bookings", cust, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	setGinTestMode()
	h := NewHandler(nil, nil, nil, zap.NewNop(), time.Second)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		h.respondError(c, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Equal(t, "Internal server error", decodeError(t, w).Error)
}

func TestRequestMetaDropsCredentials(t *testing.T) {
	setGinTestMode()
	var meta accounts.Meta
	r := gin.New()
	r.GET("/meta", func(c *gin.Context) {
		meta = requestMeta(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/meta", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "session=1")
	req.Header.Set("User-Agent", "booking-tests")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "booking-tests", meta.Headers["User-Agent"])
	assert.NotContains(t, meta.Headers, "Authorization")
	assert.NotContains(t, meta.Headers, "Cookie")
}
