package cooldown

import (
	"context"
	"fmt"
	"math"
	"time"

	"aiboyfriend/pkg/config"
)

// Gate decides whether a user is still cooling down after their last reward.
// Cooldown state is derived from the stored timestamp at read time.
type Gate struct {
	store     Store
	duration  time.Duration
	reduction float64
	now       func() time.Time
}

// Status is a snapshot of a user's cooldown.
type Status struct {
	InCooldown      bool
	LastRewardAt    time.Time
	Remaining       time.Duration
	ReductionFactor float64
}

// NewGate creates a gate. A nil store keeps timestamps in memory.
func NewGate(store Store, duration time.Duration, reduction float64) *Gate {
	if store == nil {
		store = NewMemoryStore(duration)
	}
	return &Gate{
		store:     store,
		duration:  duration,
		reduction: reduction,
		now:       time.Now,
	}
}

// NewGateFromConfig builds a gate from the cooldown section of the config.
func NewGateFromConfig(c *config.Config, store Store) *Gate {
	return NewGate(store, c.CooldownDuration(), c.Cooldown.Reduction)
}

// WithClock replaces the gate's time source.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

func (g *Gate) Now() time.Time {
	return g.now()
}

func (g *Gate) Duration() time.Duration {
	return g.duration
}

// IsInCooldown reports whether lastReward is less than the cooldown duration
// ago. A zero lastReward means the user was never rewarded.
func (g *Gate) IsInCooldown(userID string, lastReward time.Time) bool {
	if lastReward.IsZero() {
		return false
	}
	return g.now().Sub(lastReward) < g.duration
}

// ApplyReduction scales rawDelta by the reduction factor, floored, while in
// cooldown.
func (g *Gate) ApplyReduction(rawDelta int, inCooldown bool) int {
	if !inCooldown || rawDelta <= 0 {
		return rawDelta
	}
	return int(math.Floor(float64(rawDelta) * g.reduction))
}

// RecordReward stores now as the user's last reward time when delta > 0 and
// returns the recorded time. A zero delta records nothing.
func (g *Gate) RecordReward(ctx context.Context, userID string, delta int) (time.Time, error) {
	if delta <= 0 {
		return time.Time{}, nil
	}
	now := g.now()
	if err := g.store.Set(ctx, userID, now); err != nil {
		return now, fmt.Errorf("failed to record reward for %s: %w", userID, err)
	}
	return now, nil
}

// LastReward returns the stored last reward time for userID.
func (g *Gate) LastReward(ctx context.Context, userID string) (time.Time, bool, error) {
	return g.store.Get(ctx, userID)
}

// Status merges the caller's known last reward with the store's and reports
// the remaining cooldown.
func (g *Gate) Status(ctx context.Context, userID string, lastReward time.Time) (Status, error) {
	last := lastReward
	stored, ok, err := g.store.Get(ctx, userID)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read cooldown for %s: %w", userID, err)
	}
	if ok && stored.After(last) {
		last = stored
	}

	st := Status{LastRewardAt: last, ReductionFactor: 1}
	if g.IsInCooldown(userID, last) {
		st.InCooldown = true
		st.Remaining = g.duration - g.now().Sub(last)
		if st.Remaining > g.duration {
			st.Remaining = g.duration
		}
		st.ReductionFactor = g.reduction
	}
	return st, nil
}

// Clear forgets the user's stored reward time.
func (g *Gate) Clear(ctx context.Context, userID string) error {
	return g.store.Delete(ctx, userID)
}
