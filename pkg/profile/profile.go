package profile

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"aiboyfriend/pkg/config"
	"aiboyfriend/pkg/reward"
)

var ErrNotFound = errors.New("profile: not found")

// Profile is the persisted state of one user.
type Profile struct {
	UserID        string       `json:"user_id"`
	DOL           int          `json:"dol"`
	Intimacy      int          `json:"intimacy"`
	Group         reward.Group `json:"ab_group"`
	LastRewardAt  time.Time    `json:"last_reward_at"`
	TotalMessages int          `json:"total_messages"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Turn is the change applied to a profile after one handled message.
type Turn struct {
	DOLDelta      int
	IntimacyDelta int
	RewardedAt    time.Time // zero keeps the previous value
}

// Session is one user message with the bot's reply.
type Session struct {
	ID           string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	UserMessage  string    `json:"user_message"`
	BotReply     string    `json:"bot_reply"`
	Tokens       int       `json:"tokens"`
	HET          int       `json:"het"`
	EmotionScore float64   `json:"emotion_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// Event is an A/B analytics record.
type Event struct {
	ID        string                 `json:"event_id"`
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"event_type"`
	Group     reward.Group           `json:"ab_group"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
}

// Store persists profiles, chat sessions and analytics events.
type Store interface {
	// GetOrCreate returns the profile, creating it on first contact. The
	// bool reports whether it was created by this call.
	GetOrCreate(ctx context.Context, userID string) (Profile, bool, error)
	Get(ctx context.Context, userID string) (Profile, error)
	ApplyTurn(ctx context.Context, userID string, turn Turn) (Profile, error)
	SaveSession(ctx context.Context, s Session) error
	// RecentSessions returns up to limit sessions, oldest first.
	RecentSessions(ctx context.Context, userID string, limit int) ([]Session, error)
	LogEvent(ctx context.Context, e Event) error
	Leaderboard(ctx context.Context, limit int) ([]Profile, error)
}

// Options control how new profiles are initialised.
type Options struct {
	GroupARatio float64
	InitialDOLA int
	InitialDOLB int
	Rand        func() float64
	Now         func() time.Time
}

func OptionsFromConfig(c *config.Config) Options {
	return Options{
		GroupARatio: c.AB.GroupARatio,
		InitialDOLA: c.DOL.InitialGroupA,
		InitialDOLB: c.DOL.InitialGroupB,
	}
}

func (o Options) withDefaults() Options {
	if o.Rand == nil {
		o.Rand = rand.Float64
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// AssignGroup flips the A/B coin: A with probability ratioA.
func AssignGroup(rnd func() float64, ratioA float64) reward.Group {
	if rnd() < ratioA {
		return reward.GroupA
	}
	return reward.GroupB
}

// newProfile builds a fresh profile with a random group and its starting DOL.
func (o Options) newProfile(userID string) Profile {
	group := AssignGroup(o.Rand, o.GroupARatio)
	dol := o.InitialDOLB
	if group == reward.GroupA {
		dol = o.InitialDOLA
	}
	return Profile{
		UserID:    userID,
		DOL:       dol,
		Intimacy:  0,
		Group:     group,
		CreatedAt: o.Now(),
	}
}

// Apply returns p with turn applied. DOL and intimacy never drop below zero.
func (p Profile) Apply(turn Turn) Profile {
	p.DOL = max(p.DOL+turn.DOLDelta, 0)
	p.Intimacy = max(p.Intimacy+turn.IntimacyDelta, 0)
	if !turn.RewardedAt.IsZero() {
		p.LastRewardAt = turn.RewardedAt
	}
	p.TotalMessages++
	return p
}

func (s Session) normalized(now func() time.Time) Session {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now()
	}
	return s
}

func (e Event) normalized(now func() time.Time) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	return e
}
