package chat

import (
	"math"
	"unicode"
)

// EstimateTokens approximates a token count: 1.5 per CJK ideograph, 1 per
// run of Latin letters, 0.5 per other visible character.
func EstimateTokens(text string) int {
	var cjk, words, other int
	inWord := false

	for _, r := range text {
		isLatin := r < unicode.MaxASCII && unicode.IsLetter(r)
		switch {
		case isLatin:
			if !inWord {
				words++
			}
		case unicode.Is(unicode.Han, r):
			cjk++
		case unicode.IsSpace(r):
		default:
			other++
		}
		inWord = isLatin
	}

	return int(math.Ceil(float64(cjk)*1.5 + float64(words) + float64(other)*0.5))
}
