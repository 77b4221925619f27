package relationship

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiers_ContiguousAndOrdered(t *testing.T) {
	require.NotEmpty(t, Tiers)
	assert.Equal(t, 0, Tiers[0].MinPoints, "first tier must start at 0")
	assert.True(t, Tiers[len(Tiers)-1].IsOpenEnded(), "last tier must be open-ended")

	for i := 1; i < len(Tiers); i++ {
		prev, cur := Tiers[i-1], Tiers[i]
		require.False(t, prev.IsOpenEnded(), "only the last tier may be open-ended")
		assert.Equal(t, prev.MaxPoints+1, cur.MinPoints, "gap or overlap between %s and %s", prev.Name, cur.Name)
	}
}

func TestGetTier_ExactlyOneMatch(t *testing.T) {
	for p := 0; p <= 10000; p++ {
		matches := 0
		for _, tier := range Tiers {
			if tier.Contains(p) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("points %d matched %d tiers", p, matches)
		}
		if !GetTier(p).Contains(p) {
			t.Fatalf("GetTier(%d) returned a tier that does not contain it", p)
		}
	}
}

func TestGetTier_Boundaries(t *testing.T) {
	tests := []struct {
		points int
		want   string
	}{
		{0, "Stranger"},
		{19, "Stranger"},
		{20, "Familiar"},
		{39, "Familiar"},
		{40, "Close"},
		{59, "Close"},
		{60, "Sweet"},
		{79, "Sweet"},
		{80, "Passionate"},
		{99, "Passionate"},
		{100, "Devoted"},
		{1_000_000, "Devoted"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetTier(tt.points).Name, "points=%d", tt.points)
	}
}

func TestGetTier_NegativeClampsToStranger(t *testing.T) {
	assert.Equal(t, "Stranger", GetTier(-5).Name)
}

func TestGetNickname_StrangerPrimaryOnly(t *testing.T) {
	stranger := GetTier(0)
	for i := 0; i < 50; i++ {
		assert.Contains(t, stranger.Nicknames.Primary, GetNickname(0, false))
	}
}

func TestGetNickname_OccasionalUnion(t *testing.T) {
	tier := GetTier(65)
	pool := NicknamePool(tier, true)
	assert.Len(t, pool, len(tier.Nicknames.Primary)+len(tier.Nicknames.Occasional))

	// Always pick the last index to land in the occasional part of the pool
	got := pickNickname(tier, true, func(n int) int { return n - 1 })
	assert.Equal(t, tier.Nicknames.Occasional[len(tier.Nicknames.Occasional)-1], got)

	got = pickNickname(tier, false, func(n int) int { return n - 1 })
	assert.Contains(t, tier.Nicknames.Primary, got)
}

func TestGetNickname_EmptyPool(t *testing.T) {
	got := pickNickname(Tier{Name: "empty"}, true, func(n int) int { return 0 })
	assert.Equal(t, DefaultNickname, got)
}

func TestCheckLevelUp(t *testing.T) {
	change := CheckLevelUp(18, 21)
	assert.True(t, change.LeveledUp)
	assert.Equal(t, "Stranger", change.Old.Name)
	assert.Equal(t, "Familiar", change.New.Name)

	assert.False(t, CheckLevelUp(21, 25).LeveledUp)
	assert.False(t, CheckLevelUp(25, 10).LeveledUp, "dropping a tier is not a level up")
}

func TestNextLevel(t *testing.T) {
	next, needed := NextLevel(15)
	require.NotNil(t, next)
	assert.Equal(t, "Familiar", next.Name)
	assert.Equal(t, 5, needed)

	next, needed = NextLevel(150)
	assert.Nil(t, next)
	assert.Equal(t, 0, needed)
}

func TestProgressBar(t *testing.T) {
	bar := ProgressBar(30)
	assert.True(t, strings.HasPrefix(bar, "█████▁▁▁▁▁"), "got %q", bar)
	assert.Contains(t, bar, "(30/39")

	assert.Contains(t, ProgressBar(250), "MAX")
	assert.True(t, strings.HasPrefix(ProgressBar(0), strings.Repeat("▁", 10)))
}

func TestInstruction(t *testing.T) {
	out := Instruction(65, "宝贝")
	assert.Contains(t, out, "甜蜜期")
	assert.Contains(t, out, "\"宝贝\"")
	assert.Contains(t, out, "甜腻关心")
	assert.Contains(t, out, "我好爱好爱你")
}

func TestLevelUpMessage(t *testing.T) {
	msg := LevelUpMessage(GetTier(45), "小可爱")
	assert.Contains(t, msg, "小可爱")
	assert.NotContains(t, msg, "{nickname}")

	generic := LevelUpMessage(Tier{Name: "Unknown", Emoji: "✨"}, "你")
	assert.Contains(t, generic, "升级")
}
