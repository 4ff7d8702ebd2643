// Package cache memoizes expensive source payloads for the lifetime of one process.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"betedge/engine/internal/metrics"
)

// Cache stores raw payloads by key
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// GetJSON decodes a cached JSON value into out
func GetJSON(ctx context.Context, c Cache, key string, out any) (bool, error) {
	start := time.Now()
	data, ok, err := c.Get(ctx, key)
	metrics.RecordCacheOperation("get", time.Since(start).Seconds())
	if err != nil {
		return false, err
	}
	if !ok {
		metrics.RecordCacheMiss()
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	metrics.RecordCacheHit()
	return true, nil
}

// SetJSON stores value as JSON
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s for cache: %w", key, err)
	}
	start := time.Now()
	err = c.Set(ctx, key, data, ttl)
	metrics.RecordCacheOperation("set", time.Since(start).Seconds())
	return err
}

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process cache
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-process cache
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements Cache
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements Cache. A zero ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Close drops every entry
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
	return nil
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Close() error                                             { return nil }
