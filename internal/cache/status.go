// Package cache holds the per-user profile status used for fast redirect decisions.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const namespace = "profile_status"

// ErrMiss is returned when no status is cached for the user
var ErrMiss = errors.New("cache miss")

// Status is the cached summary of a user's profile
type Status struct {
	HasProfile           bool    `json:"hasProfile"`
	IsProfileComplete    bool    `json:"isProfileComplete"`
	CompletionPercentage int     `json:"completionPercentage"`
	NextSection          *string `json:"nextSection"`
}

// StatusCache stores Status per user
type StatusCache interface {
	Get(ctx context.Context, userID string) (*Status, error)
	Set(ctx context.Context, userID string, status Status) error
	Delete(ctx context.Context, userID string) error
}

// RedisCache is a StatusCache backed by Redis
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache creates a new Redis status cache
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client, ttl: ttl}
}

func key(userID string) string {
	return namespace + ":" + userID
}

// Get returns the cached status or ErrMiss
func (c *RedisCache) Get(ctx context.Context, userID string) (*Status, error) {
	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	var status Status
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return &status, nil
}

// Set stores the status with the configured TTL
func (c *RedisCache) Set(ctx context.Context, userID string, status Status) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	if err := c.client.Set(ctx, key(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	return nil
}

// Delete drops the cached status
func (c *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete status: %w", err)
	}
	return nil
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop never caches anything
type Nop struct{}

func (Nop) Get(context.Context, string) (*Status, error) { return nil, ErrMiss }
func (Nop) Set(context.Context, string, Status) error    { return nil }
func (Nop) Delete(context.Context, string) error         { return nil }
