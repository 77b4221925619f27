package profile

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"aiboyfriend/pkg/cache"
)

const sessionCacheSize = 20

// CachedStore puts a Redis read-through cache in front of a Store. Profiles
// are refreshed on every write; recent sessions are kept as a capped list.
type CachedStore struct {
	Store
	cache *cache.Cache
}

func NewCachedStore(store Store, cache *cache.Cache) *CachedStore {
	return &CachedStore{
		Store: store,
		cache: cache,
	}
}

func (c *CachedStore) profileKey(userID string) string {
	return c.cache.Key("profile", userID)
}

func (c *CachedStore) sessionsKey(userID string) string {
	return c.cache.Key("sessions", userID)
}

func (c *CachedStore) remember(ctx context.Context, p Profile) {
	if err := c.cache.SetJSON(ctx, c.profileKey(p.UserID), p, cache.ProfileTTL); err != nil {
		log.Printf("Failed to cache profile %s: %v", p.UserID, err)
	}
}

func (c *CachedStore) Get(ctx context.Context, userID string) (Profile, error) {
	var p Profile
	if err := c.cache.GetJSON(ctx, c.profileKey(userID), &p); err == nil {
		return p, nil
	}

	p, err := c.Store.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	c.remember(ctx, p)
	return p, nil
}

func (c *CachedStore) GetOrCreate(ctx context.Context, userID string) (Profile, bool, error) {
	var p Profile
	if err := c.cache.GetJSON(ctx, c.profileKey(userID), &p); err == nil {
		return p, false, nil
	}

	p, created, err := c.Store.GetOrCreate(ctx, userID)
	if err != nil {
		return Profile{}, false, err
	}
	c.remember(ctx, p)
	return p, created, nil
}

func (c *CachedStore) ApplyTurn(ctx context.Context, userID string, turn Turn) (Profile, error) {
	p, err := c.Store.ApplyTurn(ctx, userID, turn)
	if err != nil {
		// Drop a possibly stale copy
		_ = c.cache.Delete(ctx, c.profileKey(userID))
		return Profile{}, err
	}
	c.remember(ctx, p)
	return p, nil
}

func (c *CachedStore) SaveSession(ctx context.Context, session Session) error {
	session = session.normalized(time.Now)
	if err := c.Store.SaveSession(ctx, session); err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		log.Printf("Failed to encode session for %s: %v", session.UserID, err)
		return nil
	}
	key := c.sessionsKey(session.UserID)
	if exists, _ := c.cache.Exists(ctx, key); !exists {
		// Only extend a list that was seeded from the store
		return nil
	}
	if err := c.cache.PushCapped(ctx, key, sessionCacheSize, cache.HistoryTTL, string(data)); err != nil {
		log.Printf("Failed to cache session for %s: %v", session.UserID, err)
	}
	return nil
}

func (c *CachedStore) RecentSessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	key := c.sessionsKey(userID)

	if limit > 0 && limit <= sessionCacheSize {
		data, err := c.cache.LRange(ctx, key, 0, int64(limit-1))
		if err == nil && len(data) > 0 {
			sessions := make([]Session, 0, len(data))
			// Cached list is newest first
			for i := len(data) - 1; i >= 0; i-- {
				var s Session
				if json.Unmarshal([]byte(data[i]), &s) != nil {
					continue
				}
				sessions = append(sessions, s)
			}
			if len(sessions) > 0 {
				return sessions, nil
			}
		}
	}

	sessions, err := c.Store.RecentSessions(ctx, userID, max(limit, sessionCacheSize))
	if err != nil {
		return nil, err
	}

	if exists, _ := c.cache.Exists(ctx, key); !exists && len(sessions) > 0 {
		values := make([]string, 0, len(sessions))
		for _, s := range sessions {
			data, marshalErr := json.Marshal(s)
			if marshalErr != nil {
				log.Printf("Failed to encode session for %s: %v", userID, marshalErr)
				continue
			}
			values = append(values, string(data))
		}
		// LPUSH of oldest..newest leaves newest at the head
		if pushErr := c.cache.PushCapped(ctx, key, sessionCacheSize, cache.HistoryTTL, values...); pushErr != nil {
			log.Printf("Failed to seed session cache for %s: %v", userID, pushErr)
		}
	}

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[len(sessions)-limit:]
	}
	return sessions, nil
}
