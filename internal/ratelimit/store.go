package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store counts hits per key within a fixed window.
type Store interface {
	// Increment records one hit and returns the count in the current window
	// and the time left until the window resets.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// MemoryStore keeps counters in process memory. Counters are lost on restart
// and are not shared between instances.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string]*memoryCounter
	clock func() time.Time
}

type memoryCounter struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]*memoryCounter),
		clock: time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *MemoryStore) WithClock(clock func() time.Time) *MemoryStore {
	s.clock = clock
	return s
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data[key]
	if !ok || !now.Before(c.windowEnd) {
		c = &memoryCounter{windowEnd: now.Add(window)}
		s.data[key] = c
	}
	c.count++

	return c.count, c.windowEnd.Sub(now), nil
}

// Prune drops counters whose window has ended and reports how many were removed.
func (s *MemoryStore) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, c := range s.data {
		if !now.Before(c.windowEnd) {
			delete(s.data, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live counters.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// RedisStore shares counters between instances through Redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "swinggity:"}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = s.prefix + key

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("incr %s: %w", key, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("pexpire %s: %w", key, err)
		}
		return count, window, nil
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// A key without expiry would never reset; repair it.
		if ttl == -1 {
			_ = s.client.PExpire(ctx, key, window).Err()
		}
		return count, window, nil
	}
	return count, ttl, nil
}
