// Package cache provides the read-through cache for warehouse lists and
// per-customer quote lists. Writers invalidate synchronously.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const WarehouseListKey = "warehouses:list"

// QuoteListKey holds a customer's default quote list view
func QuoteListKey(customerID string) string {
	return "quotes:customer:" + customerID
}

// Cache is a JSON cache with per-key versions. Delete bumps the version of
// every key it removes, so a reader that loaded from the store before an
// invalidation can detect it and skip the fill.
type Cache interface {
	// GetJSON decodes the cached value into dest and reports a hit
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	// Version reads the invalidation counter of key, zero if never invalidated
	Version(ctx context.Context, key string) (int64, error)
	// SetJSONIfVersion stores v only while key is still at version
	SetJSONIfVersion(ctx context.Context, key string, v interface{}, version int64) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

func versionKey(key string) string {
	return key + ":version"
}

// RedisCache stores JSON values in Redis with a fixed TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects and pings Redis
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Version(ctx context.Context, key string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", versionKey(key), err)
	}
	return v, nil
}

// SetJSONIfVersion watches the version key so a concurrent Delete aborts the write
func (c *RedisCache) SetJSONIfVersion(ctx context.Context, key string, v interface{}, version int64) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, versionKey(key)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, versionKey(key))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis set %s: %w", key, err)
	}
	return stored, nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, k := range keys {
			pipe.Incr(ctx, versionKey(k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error { return c.client.Close() }

// Memory is an in-process cache used when Redis is not configured
type Memory struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]memoryEntry
	versions map[string]int64
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: make(map[string]memoryEntry), versions: make(map[string]int64)}
}

func (m *Memory) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && m.ttl > 0 && time.Now().After(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.value, dest)
}

func (m *Memory) Version(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[key], nil
}

func (m *Memory) SetJSONIfVersion(ctx context.Context, key string, v interface{}, version int64) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[key] != version {
		return false, nil
	}
	m.entries[key] = memoryEntry{value: b, expires: time.Now().Add(m.ttl)}
	return true, nil
}

func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
		m.versions[k]++
	}
	m.mu.Unlock()
	return nil
}

// Has reports whether key is currently cached
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}
