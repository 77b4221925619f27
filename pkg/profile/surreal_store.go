package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"aiboyfriend/pkg/reward"
	"aiboyfriend/pkg/surreal"
)

// SurrealStore persists profiles, sessions and events in SurrealDB.
type SurrealStore struct {
	client *surreal.Client
	opts   Options
}

// Timestamps are stored as unix milliseconds, 0 meaning unset.
type profileRow struct {
	UserID        string `json:"user_id"`
	DOL           int    `json:"dol"`
	Intimacy      int    `json:"intimacy"`
	Group         string `json:"ab_group"`
	LastRewardAt  int64  `json:"last_reward_at"`
	TotalMessages int    `json:"total_messages"`
	CreatedAt     int64  `json:"created_at"`
}

type sessionRow struct {
	SessionID    string  `json:"session_id"`
	UserID       string  `json:"user_id"`
	UserMessage  string  `json:"user_message"`
	BotReply     string  `json:"bot_reply"`
	Tokens       int     `json:"tokens"`
	HET          int     `json:"het"`
	EmotionScore float64 `json:"emotion_score"`
	CreatedAt    int64   `json:"created_at"`
}

func NewSurrealStore(ctx context.Context, client *surreal.Client, opts Options) *SurrealStore {
	store := &SurrealStore{
		client: client,
		opts:   opts.withDefaults(),
	}
	if err := store.Init(ctx); err != nil {
		// Schema may already exist or the DB may come up later
		log.Printf("Warning: Failed to initialize SurrealDB schema: %v", err)
	}
	return store
}

func (s *SurrealStore) Init(ctx context.Context) error {
	query := `
		DEFINE TABLE IF NOT EXISTS profiles SCHEMAFULL;
		DEFINE FIELD IF NOT EXISTS user_id ON profiles TYPE string;
		DEFINE FIELD IF NOT EXISTS dol ON profiles TYPE int;
		DEFINE FIELD IF NOT EXISTS intimacy ON profiles TYPE int;
		DEFINE FIELD IF NOT EXISTS ab_group ON profiles TYPE string;
		DEFINE FIELD IF NOT EXISTS last_reward_at ON profiles TYPE int;
		DEFINE FIELD IF NOT EXISTS total_messages ON profiles TYPE int;
		DEFINE FIELD IF NOT EXISTS created_at ON profiles TYPE int;
		DEFINE INDEX IF NOT EXISTS profiles_intimacy ON profiles FIELDS intimacy;

		DEFINE TABLE IF NOT EXISTS sessions SCHEMAFULL;
		DEFINE FIELD IF NOT EXISTS session_id ON sessions TYPE string;
		DEFINE FIELD IF NOT EXISTS user_id ON sessions TYPE string;
		DEFINE FIELD IF NOT EXISTS user_message ON sessions TYPE string;
		DEFINE FIELD IF NOT EXISTS bot_reply ON sessions TYPE string;
		DEFINE FIELD IF NOT EXISTS tokens ON sessions TYPE int;
		DEFINE FIELD IF NOT EXISTS het ON sessions TYPE int;
		DEFINE FIELD IF NOT EXISTS emotion_score ON sessions TYPE float;
		DEFINE FIELD IF NOT EXISTS created_at ON sessions TYPE int;
		DEFINE INDEX IF NOT EXISTS sessions_user ON sessions FIELDS user_id, created_at;

		DEFINE TABLE IF NOT EXISTS ab_events SCHEMALESS;
		DEFINE INDEX IF NOT EXISTS ab_events_user ON ab_events FIELDS user_id;
	`
	return s.client.Exec(ctx, query, nil)
}

func (s *SurrealStore) GetOrCreate(ctx context.Context, userID string) (Profile, bool, error) {
	p, err := s.Get(ctx, userID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, false, err
	}

	fresh := s.opts.newProfile(userID)
	row := toProfileRow(fresh)
	err = s.client.Exec(ctx, `CREATE type::thing("profiles", $user_id) CONTENT $row;`, map[string]interface{}{
		"user_id": userID,
		"row":     row,
	})
	if err != nil {
		// Another handler may have created it concurrently
		if existing, getErr := s.Get(ctx, userID); getErr == nil {
			return existing, false, nil
		}
		return Profile{}, false, fmt.Errorf("failed to create profile %s: %w", userID, err)
	}
	return fresh, true, nil
}

func (s *SurrealStore) Get(ctx context.Context, userID string) (Profile, error) {
	rows, err := surreal.Query[profileRow](ctx, s.client,
		`SELECT * OMIT id FROM type::thing("profiles", $user_id);`,
		map[string]interface{}{"user_id": userID})
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load profile %s: %w", userID, err)
	}
	if len(rows) == 0 {
		return Profile{}, ErrNotFound
	}
	return rows[0].toProfile(), nil
}

func (s *SurrealStore) ApplyTurn(ctx context.Context, userID string, turn Turn) (Profile, error) {
	query := `
		UPDATE type::thing("profiles", $user_id) SET
			dol = math::max([dol + $dol_delta, 0]),
			intimacy = math::max([intimacy + $intimacy_delta, 0]),
			last_reward_at = IF $rewarded_at > 0 THEN $rewarded_at ELSE last_reward_at END,
			total_messages += 1
		RETURN AFTER;
	`
	rows, err := surreal.Query[profileRow](ctx, s.client, query, map[string]interface{}{
		"user_id":        userID,
		"dol_delta":      turn.DOLDelta,
		"intimacy_delta": turn.IntimacyDelta,
		"rewarded_at":    toMillis(turn.RewardedAt),
	})
	if err != nil {
		return Profile{}, fmt.Errorf("failed to update profile %s: %w", userID, err)
	}
	if len(rows) == 0 {
		return Profile{}, ErrNotFound
	}
	return rows[0].toProfile(), nil
}

func (s *SurrealStore) SaveSession(ctx context.Context, session Session) error {
	session = session.normalized(s.opts.Now)
	row := sessionRow{
		SessionID:    session.ID,
		UserID:       session.UserID,
		UserMessage:  session.UserMessage,
		BotReply:     session.BotReply,
		Tokens:       session.Tokens,
		HET:          session.HET,
		EmotionScore: session.EmotionScore,
		CreatedAt:    toMillis(session.CreatedAt),
	}
	if err := s.client.Exec(ctx, `CREATE sessions CONTENT $row;`, map[string]interface{}{"row": row}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SurrealStore) RecentSessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	rows, err := surreal.Select[sessionRow](ctx, s.client, surreal.Selector{
		Table:   "sessions",
		Filter:  map[string]interface{}{"user_id": userID},
		OrderBy: "created_at",
		Desc:    true,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions for %s: %w", userID, err)
	}

	// Newest first from the DB, oldest first to callers
	out := make([]Session, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = Session{
			ID:           r.SessionID,
			UserID:       r.UserID,
			UserMessage:  r.UserMessage,
			BotReply:     r.BotReply,
			Tokens:       r.Tokens,
			HET:          r.HET,
			EmotionScore: r.EmotionScore,
			CreatedAt:    fromMillis(r.CreatedAt),
		}
	}
	return out, nil
}

func (s *SurrealStore) LogEvent(ctx context.Context, e Event) error {
	e = e.normalized(s.opts.Now)
	err := s.client.Exec(ctx, `CREATE ab_events CONTENT $row;`, map[string]interface{}{
		"row": map[string]interface{}{
			"event_id":   e.ID,
			"user_id":    e.UserID,
			"event_type": e.Type,
			"ab_group":   string(e.Group),
			"data":       e.Data,
			"created_at": toMillis(e.CreatedAt),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to log event %s: %w", e.Type, err)
	}
	return nil
}

func (s *SurrealStore) Leaderboard(ctx context.Context, limit int) ([]Profile, error) {
	rows, err := surreal.Select[profileRow](ctx, s.client, surreal.Selector{
		Table:   "profiles",
		OrderBy: "intimacy",
		Desc:    true,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	out := make([]Profile, len(rows))
	for i, r := range rows {
		out[i] = r.toProfile()
	}
	return out, nil
}

func toProfileRow(p Profile) profileRow {
	return profileRow{
		UserID:        p.UserID,
		DOL:           p.DOL,
		Intimacy:      p.Intimacy,
		Group:         string(p.Group),
		LastRewardAt:  toMillis(p.LastRewardAt),
		TotalMessages: p.TotalMessages,
		CreatedAt:     toMillis(p.CreatedAt),
	}
}

func (r profileRow) toProfile() Profile {
	return Profile{
		UserID:        r.UserID,
		DOL:           r.DOL,
		Intimacy:      r.Intimacy,
		Group:         reward.Group(r.Group),
		LastRewardAt:  fromMillis(r.LastRewardAt),
		TotalMessages: r.TotalMessages,
		CreatedAt:     fromMillis(r.CreatedAt),
	}
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
