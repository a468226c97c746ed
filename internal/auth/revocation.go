package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Revoker remembers token ids that were logged out before expiry.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Close() error
}

// MemoryRevoker keeps revoked ids in process memory.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker creates an empty in-memory revocation list.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke implements Revoker.
func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
	m.revoked[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked implements Revoker.
func (m *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[tokenID]
	return ok && m.now().Before(exp), nil
}

// Close implements Revoker.
func (m *MemoryRevoker) Close() error { return nil }

// RedisRevoker shares the revocation list between server instances.
type RedisRevoker struct {
	client *redis.Client
	prefix string
}

// NewRedisRevoker connects to redisURL and verifies the connection.
func NewRedisRevoker(redisURL, prefix string) (*RedisRevoker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("auth: parse redis url: %w", err)
	}
	c := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("auth: redis ping: %w", err)
	}
	if prefix == "" {
		prefix = "casedesk:revoked:"
	}
	return &RedisRevoker{client: c, prefix: prefix}, nil
}

// Revoke implements Revoker.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("auth: redis revoke: %w", err)
	}
	return nil
}

// IsRevoked implements Revoker.
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("auth: redis lookup: %w", err)
	}
	return n > 0, nil
}

// Close implements Revoker.
func (r *RedisRevoker) Close() error {
	return r.client.Close()
}
