package relationship

import (
	"fmt"
	"math/rand"
	"strings"
)

// DefaultNickname is used when a tier has no nickname pool.
const DefaultNickname = "你"

const progressBarLength = 10

// GetTier returns the tier containing the given intimacy points.
// Negative points are clamped to 0.
func GetTier(points int) Tier {
	if points < 0 {
		points = 0
	}
	for _, tier := range Tiers {
		if tier.Contains(points) {
			return tier
		}
	}
	// Unreachable while the table covers [0, ∞)
	return Tiers[len(Tiers)-1]
}

// GetNickname picks a nickname uniformly from the matching tier's primary pool,
// or from primary+occasional when useOccasional is set.
func GetNickname(points int, useOccasional bool) string {
	return pickNickname(GetTier(points), useOccasional, rand.Intn)
}

func pickNickname(tier Tier, useOccasional bool, intn func(int) int) string {
	pool := NicknamePool(tier, useOccasional)
	if len(pool) == 0 {
		return DefaultNickname
	}
	return pool[intn(len(pool))]
}

// NicknamePool returns the candidate nicknames for a tier.
func NicknamePool(tier Tier, useOccasional bool) []string {
	pool := make([]string, 0, len(tier.Nicknames.Primary)+len(tier.Nicknames.Occasional))
	pool = append(pool, tier.Nicknames.Primary...)
	if useOccasional {
		pool = append(pool, tier.Nicknames.Occasional...)
	}
	return pool
}

// LevelChange describes a tier transition between two point totals.
type LevelChange struct {
	LeveledUp bool
	Old       Tier
	New       Tier
}

// CheckLevelUp compares the tiers of two point totals.
func CheckLevelUp(oldPoints, newPoints int) LevelChange {
	oldTier := GetTier(oldPoints)
	newTier := GetTier(newPoints)
	return LevelChange{
		LeveledUp: oldTier.Name != newTier.Name && newTier.MinPoints > oldTier.MinPoints,
		Old:       oldTier,
		New:       newTier,
	}
}

// NextLevel returns the next tier and the points still needed to reach it.
// It returns nil for the open-ended tier.
func NextLevel(points int) (*Tier, int) {
	current := GetTier(points)
	for i := range Tiers {
		if Tiers[i].Name != current.Name || i == len(Tiers)-1 {
			continue
		}
		next := Tiers[i+1]
		needed := next.MinPoints - points
		if needed < 0 {
			needed = 0
		}
		return &next, needed
	}
	return nil, 0
}

// ProgressBar renders progress through the current tier.
func ProgressBar(points int) string {
	if points < 0 {
		points = 0
	}
	tier := GetTier(points)
	if tier.IsOpenEnded() {
		return fmt.Sprintf("%s MAX %s", strings.Repeat("█", progressBarLength), tier.Emoji)
	}

	span := tier.MaxPoints - tier.MinPoints + 1
	filled := (points - tier.MinPoints) * progressBarLength / span
	if filled > progressBarLength {
		filled = progressBarLength
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("▁", progressBarLength-filled)
	return fmt.Sprintf("%s (%d/%d %s)", bar, points, tier.MaxPoints, tier.Emoji)
}

// Instruction returns the persona system-prompt block for the user's tier.
func Instruction(points int, nickname string) string {
	tier := GetTier(points)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎭 **当前关系状态**: %s (亲密度: %d)\n", tier.LocalName, points)
	fmt.Fprintf(&sb, "🏷️ **当前称呼**: 主要称呼用户为\"%s\"\n", nickname)
	fmt.Fprintf(&sb, "%s **说话风格**: %s，%s\n", tier.Emoji, tier.Tone, tier.Intimacy)

	if guidance, ok := tierGuidance[tier.Name]; ok {
		fmt.Fprintf(&sb, "\n**%s特点**：\n", tier.LocalName)
		for _, line := range guidance {
			sb.WriteString("- " + line + "\n")
		}
	}

	if len(tier.Examples) > 0 {
		fmt.Fprintf(&sb, "\n📝 **参考表达方式**: %s", strings.Join(tier.Examples, ", "))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// LevelUpMessage renders the message sent when entering a new tier.
func LevelUpMessage(to Tier, nickname string) string {
	template, ok := levelUpMessages[to.Name]
	if !ok {
		template = genericLevelUpMessage
	}
	return strings.ReplaceAll(template, "{nickname}", nickname) + " " + to.Emoji
}
