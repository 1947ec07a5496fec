package appointments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Reservations deduplicates commits: a key can be reserved once per TTL.
type Reservations interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Fingerprint identifies a request independent of case and spacing.
func Fingerprint(req Request) string {
	parts := []string{
		strings.ToLower(req.Name),
		req.Date,
		req.Time,
		strings.ToLower(req.Contact),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}

// RedisReservations keeps reservations in Redis with SET NX and a TTL, so
// every API replica sees the same window.
type RedisReservations struct {
	client *redis.Client
	prefix string
}

// NewRedisReservations creates a Redis backed reservation store.
func NewRedisReservations(client *redis.Client, prefix string) *RedisReservations {
	if client == nil {
		panic("appointments: redis client required")
	}
	if prefix == "" {
		prefix = "salon:appointments:"
	}
	return &RedisReservations{client: client, prefix: prefix}
}

func (r *RedisReservations) key(k string) string {
	return r.prefix + "reservation:" + k
}

// Reserve returns false when the key is already reserved.
func (r *RedisReservations) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("appointments: reserve: %w", err)
	}
	return ok, nil
}

// Release drops a reservation.
func (r *RedisReservations) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("appointments: release: %w", err)
	}
	return nil
}

// MemoryReservations is the single-process fallback when Redis is not
// configured.
type MemoryReservations struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryReservations creates an in-memory reservation store.
func NewMemoryReservations() *MemoryReservations {
	return &MemoryReservations{expires: make(map[string]time.Time), now: time.Now}
}

// Reserve returns false while an unexpired reservation exists.
func (m *MemoryReservations) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if exp, ok := m.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.expires[key] = now.Add(ttl)
	// Drop expired keys so the map does not grow without bound.
	for k, exp := range m.expires {
		if !now.Before(exp) {
			delete(m.expires, k)
		}
	}
	return true, nil
}

// Release drops a reservation.
func (m *MemoryReservations) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.expires, key)
	m.mu.Unlock()
	return nil
}

var (
	_ Reservations = (*RedisReservations)(nil)
	_ Reservations = (*MemoryReservations)(nil)
)
