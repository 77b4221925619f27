package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiboyfriend/pkg/config"
	"aiboyfriend/pkg/cooldown"
	"aiboyfriend/pkg/emotion"
	"aiboyfriend/pkg/reward"
)

var testNow = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

func staticClassifier(labels []emotion.Label) emotion.Classifier {
	return emotion.ClassifierFunc(func(ctx context.Context, text string) ([]emotion.Label, error) {
		return labels, nil
	})
}

// scoresPointEight yields a model score of exactly 0.8
var scoresPointEight = []emotion.Label{
	{Label: "joy", Score: 0.9},
	{Label: "sadness", Score: 0.1},
}

type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, userID string) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("redis down")
}
func (brokenStore) Set(ctx context.Context, userID string, at time.Time) error {
	return errors.New("redis down")
}
func (brokenStore) Delete(ctx context.Context, userID string) error { return nil }

func newTestPipeline(classifier emotion.Classifier, store cooldown.Store) *Pipeline {
	gate := cooldown.NewGate(store, 300*time.Second, 0.5).WithClock(func() time.Time { return testNow })
	return New(emotion.NewScorer(classifier, time.Second), reward.DefaultCalculator(), gate)
}

func TestProcess_ModelPositive(t *testing.T) {
	p := newTestPipeline(staticClassifier(scoresPointEight), cooldown.NewMemoryStore(time.Hour))

	res, err := p.Process(context.Background(), "you are great", 50, UserState{UserID: "u1", Group: reward.GroupB})
	require.NoError(t, err)

	assert.Equal(t, emotion.SourceModel, res.Emotion.Source)
	assert.InDelta(t, 0.8, res.EmotionScore, 1e-9)
	assert.Equal(t, 48, res.HETValue)
	assert.False(t, res.ThresholdReached)
	assert.Equal(t, 100, res.Threshold)
	assert.Equal(t, 2, res.IntimacyDelta)
	assert.False(t, res.InCooldown)
	assert.Equal(t, testNow, res.RewardedAt)
}

func TestProcess_InCooldown(t *testing.T) {
	p := newTestPipeline(staticClassifier(scoresPointEight), cooldown.NewMemoryStore(time.Hour))

	state := UserState{UserID: "u1", Group: reward.GroupB, LastRewardAt: testNow.Add(-time.Minute)}
	res, err := p.Process(context.Background(), "you are great", 50, state)
	require.NoError(t, err)

	assert.True(t, res.InCooldown)
	assert.Equal(t, 2, res.RawDelta)
	assert.Equal(t, 1, res.IntimacyDelta)
	assert.Equal(t, testNow, res.RewardedAt)
}

func TestProcess_StoreRemembersPreviousReward(t *testing.T) {
	p := newTestPipeline(staticClassifier(scoresPointEight), cooldown.NewMemoryStore(time.Hour))
	state := UserState{UserID: "u1", Group: reward.GroupB}

	first, err := p.Process(context.Background(), "you are great", 10, state)
	require.NoError(t, err)
	assert.Equal(t, 2, first.IntimacyDelta)

	// Caller has not persisted the timestamp yet; the store still applies cooldown
	second, err := p.Process(context.Background(), "you are great", 10, state)
	require.NoError(t, err)
	assert.True(t, second.InCooldown)
	assert.Equal(t, 1, second.IntimacyDelta)
}

func TestProcess_KeywordFallback(t *testing.T) {
	failing := emotion.ClassifierFunc(func(ctx context.Context, text string) ([]emotion.Label, error) {
		return nil, errors.New("401 unauthorized")
	})
	p := newTestPipeline(failing, nil)

	res, err := p.Process(context.Background(), "我爱你！", 20, UserState{UserID: "u2", Group: reward.GroupA})
	require.NoError(t, err)

	assert.Equal(t, emotion.SourceKeyword, res.Emotion.Source)
	assert.True(t, res.Emotion.IsPositive)
	assert.Equal(t, 42, res.HETValue)
	assert.Equal(t, 120, res.Threshold)
	assert.Equal(t, 2, res.IntimacyDelta)
}

func TestProcess_NeutralQuestionEarnsNothing(t *testing.T) {
	p := newTestPipeline(nil, nil)

	res, err := p.Process(context.Background(), "你喜欢什么", 20, UserState{UserID: "u3", Group: reward.GroupB})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.EmotionScore)
	assert.Equal(t, 0, res.HETValue)
	assert.Equal(t, 0, res.IntimacyDelta)
	assert.True(t, res.RewardedAt.IsZero())
}

func TestProcess_NegativeEmotionEarnsNothing(t *testing.T) {
	store := cooldown.NewMemoryStore(time.Hour)
	p := newTestPipeline(nil, store)

	res, err := p.Process(context.Background(), "I hate you", 20, UserState{UserID: "u4", Group: reward.GroupB})
	require.NoError(t, err)

	assert.Less(t, res.EmotionScore, 0.0)
	assert.Greater(t, res.HETValue, 0)
	assert.Equal(t, 0, res.IntimacyDelta)
	assert.True(t, res.RewardedAt.IsZero())
	assert.Equal(t, 0, store.Len())
}

func TestProcess_NegatedNegativeEarnsNothing(t *testing.T) {
	store := cooldown.NewMemoryStore(time.Hour)
	p := newTestPipeline(nil, store)

	for i, in := range []string{"I don't care, I hate this", "烦死了，不想理你", "no, I'm sad"} {
		res, err := p.Process(context.Background(), in, 10, UserState{UserID: fmt.Sprintf("neg-%d", i), Group: reward.GroupB})
		require.NoError(t, err, in)

		assert.False(t, res.Emotion.IsPositive, in)
		assert.Less(t, res.EmotionScore, 0.0, in)
		assert.Equal(t, 0, res.IntimacyDelta, in)
		assert.True(t, res.RewardedAt.IsZero(), in)
	}
	assert.Equal(t, 0, store.Len())
}

func TestProcess_StoreFailureStillRewards(t *testing.T) {
	p := newTestPipeline(staticClassifier(scoresPointEight), brokenStore{})

	res, err := p.Process(context.Background(), "you are great", 50, UserState{UserID: "u5", Group: reward.GroupB})
	require.NoError(t, err)
	assert.Equal(t, 2, res.IntimacyDelta)
	assert.False(t, res.InCooldown)
	assert.Equal(t, testNow, res.RewardedAt)
}

func TestProcess_ThresholdBonus(t *testing.T) {
	cfg := config.Default()
	cfg.HET.BaseCap = 100
	calc := reward.NewCalculator(reward.ParamsFromConfig(cfg))
	gate := cooldown.NewGate(nil, time.Minute, 0.5)
	p := New(emotion.NewScorer(staticClassifier([]emotion.Label{{Label: "love", Score: 1}}), time.Second), calc, gate)

	res, err := p.Process(context.Background(), "love you", 5, UserState{UserID: "u6", Group: reward.GroupB})
	require.NoError(t, err)

	assert.Equal(t, 100, res.HETValue)
	assert.True(t, res.ThresholdReached)
	assert.Equal(t, 7, res.IntimacyDelta)
}

func TestProcess_InvalidInput(t *testing.T) {
	p := newTestPipeline(nil, nil)
	ctx := context.Background()

	_, err := p.Process(ctx, "", 1, UserState{})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = p.Process(ctx, "  \n\t", 1, UserState{})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = p.Process(ctx, "hi", -1, UserState{})
	assert.ErrorIs(t, err, ErrNegativeTokens)
}

func TestProcess_DeltaBounded(t *testing.T) {
	p := newTestPipeline(nil, nil)
	inputs := []string{"我爱你我爱你我爱你 💕💕💕 爱死了", "i love you so much, amazing, perfect", "开心", "讨厌", "ok"}

	for i, in := range inputs {
		res, err := p.Process(context.Background(), in, 100, UserState{UserID: string(rune('a' + i)), Group: reward.GroupA})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.IntimacyDelta, 0)
		assert.LessOrEqual(t, res.IntimacyDelta, 10)
		assert.GreaterOrEqual(t, res.HETValue, 0)
		assert.LessOrEqual(t, res.HETValue, 100)
	}
}
