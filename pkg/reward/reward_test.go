package reward

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"aiboyfriend/pkg/config"
	"aiboyfriend/pkg/emotion"
)

func TestHET_ModelPositive(t *testing.T) {
	calc := DefaultCalculator()
	result := emotion.Result{Score: 0.8, IsPositive: true, Source: emotion.SourceModel}

	het := calc.HET(result, 50)
	assert.Equal(t, 48, het)

	check := calc.CheckThreshold(het, GroupB)
	assert.False(t, check.Reached)
	assert.Equal(t, 100, check.Threshold)
	assert.InDelta(t, 0.48, check.Progress, 1e-9)

	assert.Equal(t, 2, calc.IntimacyDelta(het, check.Reached))
}

func TestHET_Multipliers(t *testing.T) {
	calc := DefaultCalculator()

	tests := []struct {
		name   string
		result emotion.Result
		want   int
	}{
		{"keyword positive", emotion.Result{Score: 1, IsPositive: true, Source: emotion.SourceKeyword}, 42},
		{"model negative", emotion.Result{Score: -1, IsPositive: false, Source: emotion.SourceModel}, 40},
		{"keyword negative", emotion.Result{Score: -0.5, IsPositive: false, Source: emotion.SourceKeyword}, 14},
		{"neutral", emotion.Result{Score: 0, Source: emotion.SourceKeyword}, 0},
		{"over range clamps base", emotion.Result{Score: 7, IsPositive: true, Source: emotion.SourceModel}, 60},
		{"nan", emotion.Result{Score: math.NaN(), IsPositive: true, Source: emotion.SourceModel}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.HET(tt.result, 10))
		})
	}
}

func TestHET_Bounded(t *testing.T) {
	calc := DefaultCalculator()
	for score := -1.0; score <= 1.0; score += 0.01 {
		for _, src := range []emotion.Source{emotion.SourceModel, emotion.SourceKeyword} {
			for tokens := 0; tokens <= 2000; tokens += 500 {
				het := calc.HET(emotion.Result{Score: score, IsPositive: score > emotion.PositiveThreshold, Source: src}, tokens)
				if het < 0 || het > MaxHET {
					t.Fatalf("het %d out of range for score %v", het, score)
				}
			}
		}
	}
}

func TestHET_FinalCapApplies(t *testing.T) {
	cfg := config.Default()
	cfg.HET.BaseCap = 500
	cfg.HET.FinalCap = 1000
	calc := NewCalculator(ParamsFromConfig(cfg))

	het := calc.HET(emotion.Result{Score: 1, IsPositive: true, Source: emotion.SourceModel}, 0)
	assert.Equal(t, MaxHET, het, "HET never exceeds 100 even when caps are misconfigured")
}

func TestCheckThreshold_Groups(t *testing.T) {
	calc := DefaultCalculator()

	a := calc.CheckThreshold(110, GroupA)
	assert.False(t, a.Reached)
	assert.Equal(t, 120, a.Threshold)

	b := calc.CheckThreshold(100, GroupB)
	assert.True(t, b.Reached)
	assert.Equal(t, 1.0, b.Progress)

	unknown := calc.CheckThreshold(100, Group("C"))
	assert.Equal(t, 100, unknown.Threshold)
}

func TestIntimacyDelta_Steps(t *testing.T) {
	calc := DefaultCalculator()

	tests := []struct {
		het     int
		reached bool
		want    int
	}{
		{0, false, 0},
		{4, false, 0},
		{5, false, 1},
		{19, false, 1},
		{20, false, 2},
		{49, false, 2},
		{50, false, 3},
		{79, false, 3},
		{80, false, 5},
		{100, false, 5},
		{100, true, 7},
		{4, true, 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, calc.IntimacyDelta(tt.het, tt.reached), "het=%d reached=%v", tt.het, tt.reached)
	}
}

func TestIntimacyDelta_Bounded(t *testing.T) {
	cfg := config.Default()
	cfg.Intimacy.Steps = []config.Step{{MinHET: 0, Delta: 50}}
	cfg.Intimacy.ThresholdBonus = 20
	calc := NewCalculator(ParamsFromConfig(cfg))

	for het := 0; het <= 100; het++ {
		for _, reached := range []bool{true, false} {
			d := calc.IntimacyDelta(het, reached)
			assert.GreaterOrEqual(t, d, 0)
			assert.LessOrEqual(t, d, 10)
		}
	}

	defaults := DefaultCalculator()
	for het := 0; het <= 100; het++ {
		for _, reached := range []bool{true, false} {
			d := defaults.IntimacyDelta(het, reached)
			assert.GreaterOrEqual(t, d, 0)
			assert.LessOrEqual(t, d, 10)
		}
	}
}

func TestIntimacyDelta_UnorderedSteps(t *testing.T) {
	calc := NewCalculator(Params{
		Steps:   []config.Step{{MinHET: 5, Delta: 1}, {MinHET: 80, Delta: 5}},
		MaxGain: 10,
	})
	assert.Equal(t, 5, calc.IntimacyDelta(90, false))
	assert.Equal(t, 1, calc.IntimacyDelta(10, false))
}
