package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWarehouse(t *testing.T, s *Store, id string, space float64) {
	t.Helper()
	require.NoError(t, s.CreateWarehouse(context.Background(), &models.Warehouse{
		ID: id, TotalSpace: space, AvailableSpace: space, PricePerSqFt: 2, IsActive: true,
	}))
}

func TestReserveSpace_NeverNegative(t *testing.T) {
	s := New()
	seedWarehouse(t, s, "w1", 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.ReserveSpace(ctx, "w1", 30); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, store.ErrInsufficientSpace)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	w, err := s.GetWarehouse(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, w.AvailableSpace)
}

func TestReleaseSpace_CappedAtTotal(t *testing.T) {
	s := New()
	seedWarehouse(t, s, "w1", 100)
	ctx := context.Background()

	require.NoError(t, s.ReserveSpace(ctx, "w1", 40))
	require.NoError(t, s.ReleaseSpace(ctx, "w1", 80))
	w, _ := s.GetWarehouse(ctx, "w1")
	assert.Equal(t, 100.0, w.AvailableSpace)

	assert.ErrorIs(t, s.ReserveSpace(ctx, "missing", 1), store.ErrNotFound)
}

func TestUpdateWarehouse_KeepsLedgerValue(t *testing.T) {
	s := New()
	seedWarehouse(t, s, "w1", 100)
	ctx := context.Background()
	require.NoError(t, s.ReserveSpace(ctx, "w1", 25))

	w, _ := s.GetWarehouse(ctx, "w1")
	w.Name = "North"
	w.AvailableSpace = 999
	require.NoError(t, s.UpdateWarehouse(ctx, w))

	got, _ := s.GetWarehouse(ctx, "w1")
	assert.Equal(t, "North", got.Name)
	assert.Equal(t, 75.0, got.AvailableSpace)
}

func TestNextInvoiceSequence_Concurrent(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 50
	seen := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.NextInvoiceSequence(ctx, "202501")
			assert.NoError(t, err)
			seen <- seq
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int]bool{}
	for seq := range seen {
		unique[seq] = true
	}
	assert.Len(t, unique, n)

	next, err := s.NextInvoiceSequence(ctx, "202502")
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestUpdateQuote_CompareAndSet(t *testing.T) {
	s := New()
	ctx := context.Background()
	q := &models.Quote{ID: "q1", CustomerID: "c1", Status: models.QuoteStatusPending}
	require.NoError(t, s.CreateQuote(ctx, q))

	q.Status = models.QuoteStatusProcessing
	require.NoError(t, s.UpdateQuote(ctx, q, models.QuoteStatusPending))

	stale := *q
	stale.Status = models.QuoteStatusRejected
	assert.ErrorIs(t, s.UpdateQuote(ctx, &stale, models.QuoteStatusPending), store.ErrStatusConflict)

	missing := &models.Quote{ID: "nope"}
	assert.ErrorIs(t, s.UpdateQuote(ctx, missing, models.QuoteStatusPending), store.ErrNotFound)
}

func TestListQuotes_FilterSortPage(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	loc := []string{"Rotterdam", "Hamburg", "rotterdam west", "Antwerp"}
	for i, l := range loc {
		st := models.QuoteStatusPending
		if i == 3 {
			st = models.QuoteStatusQuoted
		}
		require.NoError(t, s.CreateQuote(ctx, &models.Quote{
			ID: string(rune('a' + i)), CustomerID: "c1", PreferredLocation: l, Status: st,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	items, total, err := s.ListQuotes(ctx, store.Filter{Search: "ROTTERDAM", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "c", items[1].ID)

	items, total, err = s.ListQuotes(ctx, store.Filter{Statuses: []string{"pending"}, Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].ID)

	from := base.Add(90 * time.Minute)
	_, total, err = s.ListQuotes(ctx, store.Filter{DateFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", Email: "a@example.com"}))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{ID: "u2", Email: "A@example.com"}), store.ErrDuplicate)

	active := true
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u3", Email: "b@example.com", Role: models.RoleWarehouse, IsActive: true}))
	users, total, err := s.ListUsers(ctx, store.UserFilter{Role: "warehouse", IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "u3", users[0].ID)
}
