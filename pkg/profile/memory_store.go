package profile

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	opts     Options
	profiles map[string]Profile
	sessions map[string][]Session
	events   []Event
}

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:     opts.withDefaults(),
		profiles: make(map[string]Profile),
		sessions: make(map[string][]Session),
	}
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, userID string) (Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[userID]; ok {
		return p, false, nil
	}
	p := s.opts.newProfile(userID)
	s.profiles[userID] = p
	return p, true, nil
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) ApplyTurn(ctx context.Context, userID string, turn Turn) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	p = p.Apply(turn)
	s.profiles[userID] = p
	return p, nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session = session.normalized(s.opts.Now)
	s.sessions[session.UserID] = append(s.sessions[session.UserID], session)
	return nil
}

func (s *MemoryStore) RecentSessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sessions[userID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]Session, len(all))
	copy(out, all)
	return out, nil
}

func (s *MemoryStore) LogEvent(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e.normalized(s.opts.Now))
	return nil
}

// Events returns a copy of all logged events.
func (s *MemoryStore) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemoryStore) Leaderboard(ctx context.Context, limit int) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Intimacy != out[j].Intimacy {
			return out[i].Intimacy > out[j].Intimacy
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
