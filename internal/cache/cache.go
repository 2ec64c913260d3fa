// Package cache stores short-lived values: bot callback tokens and account
// link codes. Values are JSON encoded so the in-memory and Redis backends
// behave the same.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"

	"github.com/edgard/maintain/internal/config"
)

// KeyPrefix namespaces every Redis key.
const KeyPrefix = "maintain:"

// Cache is a TTL key/value store.
type Cache interface {
	// Put stores value under key for ttl; ttl <= 0 uses the default TTL.
	Put(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get decodes the value into dest and reports whether the key was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string) error
	// Sweep evicts expired entries and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
	Close() error
}

// New picks Redis when a URL is configured and memory otherwise.
func New(cfg config.CacheConfig, log *slog.Logger) (Cache, error) {
	if cfg.RedisURL == "" {
		log.Info("Using in-memory cache", "ttl", cfg.TTL)
		return NewMemory(cfg.TTL), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	log.Info("Using redis cache", "addr", opts.Addr, "ttl", cfg.TTL)
	return NewRedis(redis.NewClient(opts), cfg.TTL), nil
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// Memory is a mutex-protected map with per-entry expiry.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (m *Memory) Put(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !m.now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return true, fmt.Errorf("failed to decode cache value: %w", err)
	}
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }

// Redis stores entries in Redis under KeyPrefix; expiry is left to Redis.
type Redis struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewRedis wraps a connected client.
func NewRedis(client *redis.Client, defaultTTL time.Duration) *Redis {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Redis{client: client, prefix: KeyPrefix, defaultTTL: defaultTTL}
}

func (r *Redis) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	return r.client.Set(ctx, r.prefix+key, data, ttl).Err()
}

func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return true, fmt.Errorf("failed to decode cache value: %w", err)
	}
	return true, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Sweep is a no-op: Redis expires keys itself.
func (r *Redis) Sweep(context.Context) (int, error) { return 0, nil }

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
