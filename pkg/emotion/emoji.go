package emotion

import "math/rand"

var (
	comfortEmojis = []string{"😔", "🫂", "💙", "🌧️"}
	peakEmojis    = []string{"😍", "🥰", "❤️‍🔥", "💕", "✨"}
	warmEmojis    = []string{"😊", "🤗", "💖", "🌸"}
	mildEmojis    = []string{"😌", "💛", "🙂", "🌻"}
)

// Emoji picks a feedback emoji for a scored message and its HET value.
func Emoji(result Result, het float64) string {
	return pickEmoji(result, het, rand.Intn)
}

func pickEmoji(result Result, het float64, intn func(int) int) string {
	var pool []string
	switch {
	case !result.IsPositive:
		pool = comfortEmojis
	case het >= 100:
		pool = peakEmojis
	case het >= 50:
		pool = warmEmojis
	default:
		pool = mildEmojis
	}
	return pool[intn(len(pool))]
}
