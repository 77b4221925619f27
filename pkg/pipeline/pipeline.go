package pipeline

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"aiboyfriend/pkg/cooldown"
	"aiboyfriend/pkg/emotion"
	"aiboyfriend/pkg/reward"
)

var (
	ErrEmptyMessage   = errors.New("pipeline: message text is empty")
	ErrNegativeTokens = errors.New("pipeline: token count is negative")
)

// UserState is the caller-owned view of a user needed to compute a reward.
// Process never modifies it.
type UserState struct {
	UserID         string
	IntimacyPoints int
	Group          reward.Group
	LastRewardAt   time.Time // zero if never rewarded
}

// Result is the reward outcome of a single message.
type Result struct {
	IntimacyDelta    int
	RawDelta         int // before cooldown reduction
	HETValue         int
	ThresholdReached bool
	Threshold        int
	EmotionScore     float64
	Emotion          emotion.Result
	InCooldown       bool
	RewardedAt       time.Time // zero unless IntimacyDelta > 0
}

// Pipeline runs Emotion Scorer -> Reward Calculator -> Cooldown Gate.
// Callers must serialise calls for the same user.
type Pipeline struct {
	scorer     *emotion.Scorer
	calculator *reward.Calculator
	gate       *cooldown.Gate
}

func New(scorer *emotion.Scorer, calculator *reward.Calculator, gate *cooldown.Gate) *Pipeline {
	if calculator == nil {
		calculator = reward.DefaultCalculator()
	}
	if gate == nil {
		gate = cooldown.NewGate(nil, 300*time.Second, 0.5)
	}
	return &Pipeline{
		scorer:     scorer,
		calculator: calculator,
		gate:       gate,
	}
}

// Process scores text and computes the intimacy reward for state. It only
// fails on malformed input; classifier and cooldown store failures are logged
// and absorbed.
func (p *Pipeline) Process(ctx context.Context, text string, tokenCount int, state UserState) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyMessage
	}
	if tokenCount < 0 {
		return Result{}, ErrNegativeTokens
	}

	emo := p.scorer.Analyze(ctx, text)

	het := p.calculator.HET(emo, tokenCount)
	check := p.calculator.CheckThreshold(het, state.Group)

	raw := 0
	if emo.IsPositive {
		raw = p.calculator.IntimacyDelta(het, check.Reached)
	}

	last := state.LastRewardAt
	if stored, ok, err := p.gate.LastReward(ctx, state.UserID); err != nil {
		log.Printf("Cooldown lookup failed for %s, using profile timestamp: %v", state.UserID, err)
	} else if ok && stored.After(last) {
		last = stored
	}

	inCooldown := p.gate.IsInCooldown(state.UserID, last)
	delta := p.gate.ApplyReduction(raw, inCooldown)

	result := Result{
		IntimacyDelta:    delta,
		RawDelta:         raw,
		HETValue:         het,
		ThresholdReached: check.Reached,
		Threshold:        check.Threshold,
		EmotionScore:     emo.Score,
		Emotion:          emo,
		InCooldown:       inCooldown,
	}

	if delta > 0 {
		at, err := p.gate.RecordReward(ctx, state.UserID, delta)
		if err != nil {
			log.Printf("Cooldown record failed, granting reward anyway: %v", err)
		}
		result.RewardedAt = at
	}

	return result, nil
}
