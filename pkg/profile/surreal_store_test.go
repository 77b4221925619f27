package profile

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiboyfriend/pkg/surreal"
)

func newSurrealTestStore(t *testing.T) *SurrealStore {
	t.Helper()
	host := os.Getenv("SURREAL_DB_HOST")
	user := os.Getenv("SURREAL_DB_USER")
	pass := os.Getenv("SURREAL_DB_PASS")
	if host == "" || user == "" || pass == "" {
		t.Skip("Skipping SurrealDB integration test: SURREAL_DB_* env vars not set")
	}

	ctx := context.Background()
	client, err := surreal.NewClient(ctx, host, user, pass, "test", "profile_test")
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return NewSurrealStore(ctx, client, testOptions(0.2))
}

func TestSurrealStore_ProfileLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newSurrealTestStore(t)
	userID := uuid.NewString()

	_, err := store.Get(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)

	p, created, err := store.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 300, p.DOL)

	at := time.UnixMilli(time.Now().UnixMilli())
	p, err = store.ApplyTurn(ctx, userID, Turn{DOLDelta: -30, IntimacyDelta: 3, RewardedAt: at})
	require.NoError(t, err)
	assert.Equal(t, 270, p.DOL)
	assert.Equal(t, 3, p.Intimacy)
	assert.True(t, at.Equal(p.LastRewardAt))
	assert.Equal(t, 1, p.TotalMessages)

	p, err = store.ApplyTurn(ctx, userID, Turn{DOLDelta: -1000, IntimacyDelta: -1000})
	require.NoError(t, err)
	assert.Equal(t, 0, p.DOL)
	assert.Equal(t, 0, p.Intimacy)
	assert.True(t, at.Equal(p.LastRewardAt))
}

func TestSurrealStore_Sessions(t *testing.T) {
	ctx := context.Background()
	store := newSurrealTestStore(t)
	userID := uuid.NewString()

	base := time.Now()
	for i, msg := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveSession(ctx, Session{
			UserID:      userID,
			UserMessage: msg,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	recent, err := store.RecentSessions(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].UserMessage)
	assert.Equal(t, "c", recent[1].UserMessage)

	require.NoError(t, store.LogEvent(ctx, Event{UserID: userID, Type: "message_sent", Data: map[string]interface{}{"het": 42}}))
}
