package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/sofraeats/marketplace/pkg/redis"
)

// Manager handles caching operations with JSON serialization
type Manager struct {
	redis *redisclient.Client
}

// NewManager creates a new cache manager
func NewManager(redis *redisclient.Client) *Manager {
	return &Manager{redis: redis}
}

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	data, err := m.redis.GetString(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), result)
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
}

// GetOrSet retrieves from cache or executes fn and caches the result
func (m *Manager) GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error {
	err := m.Get(ctx, key, result)
	if err == nil {
		return nil // Cache hit
	}

	// Cache miss - execute function
	data, err := fn()
	if err != nil {
		return err
	}

	// Serve the fresh value even if writing it back fails.
	_ = m.Set(ctx, key, data, ttl)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, result)
}

// Delete removes keys from cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	return m.redis.Delete(ctx, keys...)
}

// Invalidate removes keys matching a pattern using SCAN
func (m *Manager) Invalidate(ctx context.Context, pattern string) error {
	var cursor uint64

	for {
		keys, next, err := m.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := m.redis.Delete(ctx, keys...); err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return nil
}

// CacheKeys defines common cache key patterns
type CacheKeys struct{}

var Keys = CacheKeys{}

// Provider returns cache key for a provider snapshot
func (k CacheKeys) Provider(providerID string) string {
	return fmt.Sprintf("provider:%s", providerID)
}

// FeaturedProviders returns cache key for the featured-provider list
func (k CacheKeys) FeaturedProviders(limit int) string {
	return fmt.Sprintf("providers:featured:%d", limit)
}

// ProviderMenu returns cache key for a provider's catalog
func (k CacheKeys) ProviderMenu(providerID string) string {
	return fmt.Sprintf("provider:menu:%s", providerID)
}

// Profile returns cache key for a profile snapshot
func (k CacheKeys) Profile(profileID string) string {
	return fmt.Sprintf("profile:%s", profileID)
}

// DashboardStats returns cache key for the admin dashboard summary
func (k CacheKeys) DashboardStats(period string) string {
	return fmt.Sprintf("dashboard:stats:%s", period)
}
