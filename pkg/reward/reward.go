package reward

import (
	"math"

	"aiboyfriend/pkg/config"
	"aiboyfriend/pkg/emotion"
)

// Group is the A/B cohort a user was assigned at creation.
type Group string

const (
	GroupA Group = "A"
	GroupB Group = "B"
)

// MaxHET is the upper bound of any HET value.
const MaxHET = 100

// Params is the reward calibration.
type Params struct {
	BaseCap            float64
	FinalCap           float64
	PositiveMultiplier float64
	NegativeMultiplier float64
	ModelMultiplier    float64
	KeywordMultiplier  float64
	ThresholdA         int
	ThresholdB         int
	Steps              []config.Step
	ThresholdBonus     int
	MaxGain            int
}

// ParamsFromConfig extracts reward parameters from the loaded config.
func ParamsFromConfig(c *config.Config) Params {
	return Params{
		BaseCap:            c.HET.BaseCap,
		FinalCap:           c.HET.FinalCap,
		PositiveMultiplier: c.HET.PositiveMultiplier,
		NegativeMultiplier: c.HET.NegativeMultiplier,
		ModelMultiplier:    c.HET.ModelMultiplier,
		KeywordMultiplier:  c.HET.KeywordMultiplier,
		ThresholdA:         c.Intimacy.ThresholdGroupA,
		ThresholdB:         c.Intimacy.ThresholdGroupB,
		Steps:              c.Intimacy.Steps,
		ThresholdBonus:     c.Intimacy.ThresholdBonus,
		MaxGain:            c.Intimacy.MaxGain,
	}
}

// Calculator turns emotion results into HET and intimacy deltas. It holds no
// mutable state and is safe for concurrent use.
type Calculator struct {
	params Params
}

func NewCalculator(p Params) *Calculator {
	return &Calculator{params: p}
}

// DefaultCalculator uses the built-in calibration.
func DefaultCalculator() *Calculator {
	return NewCalculator(ParamsFromConfig(config.Default()))
}

// ThresholdCheck is the outcome of comparing a HET value with a group threshold.
type ThresholdCheck struct {
	Reached   bool
	Threshold int
	Progress  float64 // het/threshold, capped at 1
}

// HET computes the bounded emotional weight of a single message. tokenCount is
// accepted for interface stability and does not affect the value.
func (c *Calculator) HET(result emotion.Result, tokenCount int) int {
	p := c.params

	score := result.Score
	if math.IsNaN(score) {
		score = 0
	}
	base := math.Min(math.Abs(score)*p.BaseCap, p.BaseCap)

	direction := p.NegativeMultiplier
	if result.IsPositive {
		direction = p.PositiveMultiplier
	}

	source := p.KeywordMultiplier
	if result.Source == emotion.SourceModel {
		source = p.ModelMultiplier
	}

	upper := math.Min(p.FinalCap, MaxHET)
	het := math.Round(clamp(base*direction*source, 0, upper))
	return int(het)
}

// CheckThreshold compares het against the group's threshold. Unknown groups
// use group B's threshold.
func (c *Calculator) CheckThreshold(het int, group Group) ThresholdCheck {
	threshold := c.params.ThresholdB
	if group == GroupA {
		threshold = c.params.ThresholdA
	}

	progress := 1.0
	if threshold > 0 {
		progress = math.Min(float64(het)/float64(threshold), 1)
	}

	return ThresholdCheck{
		Reached:   het >= threshold,
		Threshold: threshold,
		Progress:  progress,
	}
}

// IntimacyDelta maps het onto the step table, adds the threshold bonus, and
// clamps to [0, MaxGain].
func (c *Calculator) IntimacyDelta(het int, thresholdReached bool) int {
	delta, best := 0, -1
	for _, step := range c.params.Steps {
		if het >= step.MinHET && step.MinHET > best {
			delta, best = step.Delta, step.MinHET
		}
	}

	if thresholdReached {
		delta += c.params.ThresholdBonus
	}

	if delta > c.params.MaxGain {
		delta = c.params.MaxGain
	}
	if delta < 0 {
		delta = 0
	}
	return delta
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
