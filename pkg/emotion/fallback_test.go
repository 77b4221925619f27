package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     float64
		positive bool
	}{
		{"strong love", "我爱你！", 1.0, true},
		{"full width english", "Ｉ ｌｏｖｅ ｙｏｕ", 1.0, true},
		{"neutral question", "你喜欢什么", 0, false},
		{"empty", "", 0, false},
		{"no keywords", "今天天气", 0, false},
		{"negated positive", "我不开心", -0.4, false},
		{"negated negative english", "I don't care, I hate this", -0.4, false},
		{"negated negative chinese", "烦死了，不想理你", -0.4, false},
		{"no before sad", "no, I'm sad", -0.4, false},
		{"negation with mixed keywords", "不开心，好难过", -0.4, false},
		{"single negative word", "I HATE this", -0.4, false},
		{"mixed cancels", "开心又难过", 0, false},
		{"question dampened", "你开心吗", 0.4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fallback(tt.text)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
			assert.Equal(t, tt.positive, got.IsPositive)
			assert.Equal(t, SourceKeyword, got.Source)
			require.NotNil(t, got.Details)
		})
	}
}

func TestFallback_NeutralQuestionShortCircuits(t *testing.T) {
	got := Fallback("你喜欢什么呀，我超爱你")
	assert.Equal(t, 0.0, got.Score)
	assert.True(t, got.Details.NeutralQuestion)
}

func TestFallback_ConsumesOverlappingKeywords(t *testing.T) {
	got := Fallback("我爱你！")
	assert.True(t, got.Details.StrongPhrase)
	assert.Equal(t, 1, got.Details.PositiveCount, "爱 and 爱你 must not be counted again")
	assert.Equal(t, 4.0, got.Details.PositiveIntensity)
}

func TestFallback_WordBoundaries(t *testing.T) {
	got := Fallback("whatever")
	assert.Equal(t, 0.0, got.Score)
	assert.Zero(t, got.Details.NegativeCount)
	assert.False(t, got.Details.IsQuestion)
}

func TestFallback_Deterministic(t *testing.T) {
	text := "好想你呀，今天有点累但是很开心 🥰"
	first := Fallback(text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Fallback(text))
	}
}

func TestFallback_ScoreRange(t *testing.T) {
	inputs := []string{
		"我恨你我恨你我恨你 崩溃 绝望 痛苦",
		"爱爱爱爱爱 开心开心 幸福 💕💕💕",
		"i hate you, i'm so sad, depressed and miserable",
		"不不不不不",
		"???",
	}
	for _, in := range inputs {
		got := Fallback(in)
		assert.GreaterOrEqual(t, got.Score, -1.0, in)
		assert.LessOrEqual(t, got.Score, 1.0, in)
	}
}

func TestMatchAll(t *testing.T) {
	assert.Equal(t, []int{0, 8}, matchAll("sad, so sad", "sad"))
	assert.Empty(t, matchAll("sadness", "sad"))
	assert.Len(t, matchAll("难过难过", "难过"), 2)
	assert.Empty(t, matchAll("anything", ""))
}

func TestIsCJK(t *testing.T) {
	assert.True(t, IsCJK("hello 你好"))
	assert.False(t, IsCJK("hello"))
	assert.False(t, IsCJK(""))
}
