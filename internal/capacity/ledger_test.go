package capacity

import (
	"context"
	"errors"
	"testing"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/apperr"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, available float64, active bool) (*Ledger, *memory.Store) {
	t.Helper()
	s := memory.New()
	require.NoError(t, s.CreateWarehouse(context.Background(), &models.Warehouse{
		ID: "w1", TotalSpace: 200, AvailableSpace: available, PricePerSqFt: 1, IsActive: active,
	}))
	return NewLedger(s, nil), s
}

func TestReserve_InsufficientSpace(t *testing.T) {
	l, s := newLedger(t, 100, true)
	ctx := context.Background()

	err := l.Reserve(ctx, "w1", 150)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrPrecondition))
	assert.Contains(t, err.Error(), "insufficient space")

	w, _ := s.GetWarehouse(ctx, "w1")
	assert.Equal(t, 100.0, w.AvailableSpace)
}

func TestReserveAndRelease(t *testing.T) {
	l, s := newLedger(t, 100, true)
	ctx := context.Background()

	ok, err := l.CheckAvailability(ctx, "w1", 60)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Reserve(ctx, "w1", 60))
	ok, _ = l.CheckAvailability(ctx, "w1", 60)
	assert.False(t, ok)

	require.NoError(t, l.Adjust(ctx, "w1", 60))
	w, _ := s.GetWarehouse(ctx, "w1")
	assert.Equal(t, 100.0, w.AvailableSpace)
}

func TestReserve_InactiveWarehouse(t *testing.T) {
	l, _ := newLedger(t, 100, false)
	err := l.Reserve(context.Background(), "w1", 10)
	assert.True(t, errors.Is(err, apperr.ErrPrecondition))
}

func TestReserve_UnknownWarehouse(t *testing.T) {
	l, _ := newLedger(t, 100, true)
	err := l.Reserve(context.Background(), "missing", 10)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestAvailability(t *testing.T) {
	l, _ := newLedger(t, 100, true)
	resp, err := l.Availability(context.Background(), "w1", 100)
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, 100.0, resp.AvailableSpace)

	_, err = l.Availability(context.Background(), "w1", -1)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
