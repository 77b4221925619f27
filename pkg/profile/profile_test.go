package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiboyfriend/pkg/config"
	"aiboyfriend/pkg/reward"
)

var fixedNow = time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)

func testOptions(roll float64) Options {
	opts := OptionsFromConfig(config.Default())
	opts.Rand = func() float64 { return roll }
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func TestAssignGroup(t *testing.T) {
	assert.Equal(t, reward.GroupA, AssignGroup(func() float64 { return 0.1 }, 0.5))
	assert.Equal(t, reward.GroupB, AssignGroup(func() float64 { return 0.5 }, 0.5))
	assert.Equal(t, reward.GroupB, AssignGroup(func() float64 { return 0 }, 0))
	assert.Equal(t, reward.GroupA, AssignGroup(func() float64 { return 0.99 }, 1))
}

func TestProfileApply(t *testing.T) {
	p := Profile{UserID: "u", DOL: 40, Intimacy: 3}
	at := fixedNow.Add(time.Minute)

	got := p.Apply(Turn{DOLDelta: -30, IntimacyDelta: 2, RewardedAt: at})
	assert.Equal(t, 10, got.DOL)
	assert.Equal(t, 5, got.Intimacy)
	assert.Equal(t, at, got.LastRewardAt)
	assert.Equal(t, 1, got.TotalMessages)
	assert.Equal(t, 40, p.DOL, "Apply must not modify the receiver")

	got = got.Apply(Turn{DOLDelta: -30, IntimacyDelta: -20})
	assert.Equal(t, 0, got.DOL)
	assert.Equal(t, 0, got.Intimacy)
	assert.Equal(t, at, got.LastRewardAt, "zero RewardedAt keeps the previous value")
}

func TestMemoryStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testOptions(0.2))

	_, err := store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	p, created, err := store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, reward.GroupA, p.Group)
	assert.Equal(t, 300, p.DOL)
	assert.Equal(t, 0, p.Intimacy)
	assert.Equal(t, fixedNow, p.CreatedAt)

	again, created, err := store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p, again)

	groupB := NewMemoryStore(testOptions(0.8))
	p, _, err = groupB.GetOrCreate(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, reward.GroupB, p.Group)
	assert.Equal(t, 400, p.DOL)
}

func TestMemoryStore_ApplyTurn(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testOptions(0.8))

	_, err := store.ApplyTurn(ctx, "missing", Turn{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = store.GetOrCreate(ctx, "u")
	require.NoError(t, err)

	p, err := store.ApplyTurn(ctx, "u", Turn{DOLDelta: -30, IntimacyDelta: 2, RewardedAt: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 370, p.DOL)
	assert.Equal(t, 2, p.Intimacy)

	stored, err := store.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, p, stored)
}

func TestMemoryStore_Sessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testOptions(0.8))

	for i, msg := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveSession(ctx, Session{
			UserID:      "u",
			UserMessage: msg,
			CreatedAt:   fixedNow.Add(time.Duration(i) * time.Second),
		}))
	}

	recent, err := store.RecentSessions(ctx, "u", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].UserMessage)
	assert.Equal(t, "c", recent[1].UserMessage)
	assert.NotEmpty(t, recent[0].ID)

	none, err := store.RecentSessions(ctx, "other", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_EventsAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testOptions(0.8))

	require.NoError(t, store.LogEvent(ctx, Event{UserID: "u", Type: "message_sent", Group: reward.GroupB}))
	events := store.Events()
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, fixedNow, events[0].CreatedAt)

	for id, points := range map[string]int{"a": 5, "b": 50, "c": 20} {
		_, _, err := store.GetOrCreate(ctx, id)
		require.NoError(t, err)
		_, err = store.ApplyTurn(ctx, id, Turn{IntimacyDelta: points})
		require.NoError(t, err)
	}

	top, err := store.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].UserID)
	assert.Equal(t, "c", top[1].UserID)
}
