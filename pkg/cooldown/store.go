package cooldown

import (
	"context"
	"log"
	"sync"
	"time"

	"aiboyfriend/pkg/cache"
)

// Store persists the last reward time per user.
type Store interface {
	Get(ctx context.Context, userID string) (time.Time, bool, error)
	Set(ctx context.Context, userID string, at time.Time) error
	Delete(ctx context.Context, userID string) error
}

// MemoryStore keeps timestamps in process memory. Entries older than ttl are
// dropped by Cleanup.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
	}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.entries[userID]
	return at, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = at
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

// Len returns the number of tracked users.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Cleanup removes entries whose cooldown has fully elapsed at now and
// returns how many were removed.
func (s *MemoryStore) Cleanup(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, at := range s.entries {
		if now.Sub(at) >= s.ttl {
			delete(s.entries, userID)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *MemoryStore) RunCleanup(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Cleanup(now); n > 0 {
				log.Printf("Cooldown cleanup removed %d expired entries (%d remaining)", n, s.Len())
			}
		}
	}
}

// RedisStore keeps timestamps in Redis as unix nanoseconds, expiring with the
// cooldown so no sweep is needed.
type RedisStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewRedisStore(c *cache.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

func (s *RedisStore) key(userID string) string {
	return s.cache.Key("cooldown", userID)
}

func (s *RedisStore) Get(ctx context.Context, userID string) (time.Time, bool, error) {
	nanos, err := s.cache.GetInt64(ctx, s.key(userID))
	if cache.IsMiss(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(0, nanos), true, nil
}

func (s *RedisStore) Set(ctx context.Context, userID string, at time.Time) error {
	return s.cache.SetInt64(ctx, s.key(userID), at.UnixNano(), s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, s.key(userID))
}
