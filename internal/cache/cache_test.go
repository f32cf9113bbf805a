package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTripAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	var got []string
	hit, err := m.GetJSON(ctx, WarehouseListKey, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	stored, err := m.SetJSONIfVersion(ctx, WarehouseListKey, []string{"w1", "w2"}, 0)
	require.NoError(t, err)
	assert.True(t, stored)
	hit, err = m.GetJSON(ctx, WarehouseListKey, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"w1", "w2"}, got)

	require.NoError(t, m.Delete(ctx, WarehouseListKey, QuoteListKey("c1")))
	assert.False(t, m.Has(WarehouseListKey))
}

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Nanosecond)
	_, err := m.SetJSONIfVersion(ctx, "k", 1, 0)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	var v int
	hit, err := m.GetJSON(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemory_SetIfVersionSkipsAfterInvalidation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	key := QuoteListKey("c1")

	v, err := m.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	// an invalidation lands between the read of the version and the fill
	require.NoError(t, m.Delete(ctx, key))
	stored, err := m.SetJSONIfVersion(ctx, key, []string{"stale"}, v)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, m.Has(key))

	v, err = m.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	stored, err = m.SetJSONIfVersion(ctx, key, []string{"fresh"}, v)
	require.NoError(t, err)
	assert.True(t, stored)

	var got []string
	hit, err := m.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"fresh"}, got)
}

func TestQuoteListKey(t *testing.T) {
	assert.Equal(t, "quotes:customer:abc", QuoteListKey("abc"))
}
