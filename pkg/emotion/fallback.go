package emotion

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

const (
	questionDampening = 0.4
	negationFactor    = -0.5
	keywordScoreCap   = 0.8
	lowIntensityTotal = 2.0
	lowIntensityScale = 0.5
	strongPhraseBoost = 1.3
)

// consumed replaces matched text so overlapping keywords are not counted twice.
const consumed = "\x00"

// KeywordDetails explains how the keyword heuristic reached its score.
type KeywordDetails struct {
	PositiveCount     int
	NegativeCount     int
	PositiveIntensity float64
	NegativeIntensity float64
	StrongPhrase      bool
	IsQuestion        bool
	IsNegation        bool
	NeutralQuestion   bool
}

// Fallback scores text with the keyword heuristic. It is deterministic and
// never fails; text without any emotional keyword scores 0.
func Fallback(text string) Result {
	work := normalize(text)
	details := &KeywordDetails{IsQuestion: isQuestion(work)}

	for _, q := range neutralQuestions {
		if strings.Contains(work, q) {
			details.NeutralQuestion = true
			return Result{Score: 0, Source: SourceKeyword, Details: details}
		}
	}

	for _, p := range sortedStrongPhrases {
		var hit bool
		if work, hit = consume(work, p.text); hit {
			details.StrongPhrase = true
			details.add(p)
		}
	}

	for _, p := range keywordPhrases {
		var hit bool
		if work, hit = consume(work, p.text); hit {
			details.add(p)
		}
	}

	for _, n := range negationWords {
		if len(matchAll(work, n)) > 0 {
			details.IsNegation = true
			break
		}
	}

	score := details.score()
	return Result{
		Score:      score,
		IsPositive: score > PositiveThreshold,
		Source:     SourceKeyword,
		Details:    details,
	}
}

func (d *KeywordDetails) add(p phrase) {
	if p.polarity == positive {
		d.PositiveCount++
		d.PositiveIntensity += p.weight
		return
	}
	d.NegativeCount++
	d.NegativeIntensity += p.weight
}

func (d *KeywordDetails) score() float64 {
	pos, neg := d.PositiveIntensity, d.NegativeIntensity
	if !d.StrongPhrase && d.IsQuestion {
		pos *= questionDampening
	}
	// Negation turns positive mass negative at reduced weight. Negative mass is untouched.
	if !d.StrongPhrase && d.IsNegation {
		neg += pos * -negationFactor
		pos = 0
	}

	total := pos + neg
	if total == 0 {
		return 0
	}

	score := clamp((pos-neg)/total, -keywordScoreCap, keywordScoreCap)
	if total < lowIntensityTotal {
		score *= lowIntensityScale
	}
	if d.StrongPhrase {
		score = clamp(score*strongPhraseBoost, -1, 1)
	}
	return score
}

var sortedStrongPhrases = sortByLength(append([]phrase(nil), strongPhrases...))

// sortByLength orders phrases longest first so longer matches win.
func sortByLength(phrases []phrase) []phrase {
	sort.SliceStable(phrases, func(i, j int) bool {
		return utf8.RuneCountInString(phrases[i].text) > utf8.RuneCountInString(phrases[j].text)
	})
	return phrases
}

// normalize folds full-width forms and lowercases.
func normalize(text string) string {
	return strings.ToLower(width.Fold.String(text))
}

func isQuestion(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	for _, w := range questionWords {
		if len(matchAll(text, w)) > 0 {
			return true
		}
	}
	return false
}

// consume removes every occurrence of keyword from text.
func consume(text, keyword string) (string, bool) {
	starts := matchAll(text, keyword)
	if len(starts) == 0 {
		return text, false
	}

	var sb strings.Builder
	last := 0
	for _, s := range starts {
		sb.WriteString(text[last:s])
		sb.WriteString(consumed)
		last = s + len(keyword)
	}
	sb.WriteString(text[last:])
	return sb.String(), true
}

// matchAll returns the byte offsets of non-overlapping keyword occurrences.
// ASCII keywords only match on word boundaries.
func matchAll(text, keyword string) []int {
	if keyword == "" {
		return nil
	}
	ascii := isASCII(keyword)

	var starts []int
	offset := 0
	for {
		i := strings.Index(text[offset:], keyword)
		if i < 0 {
			return starts
		}
		start := offset + i
		end := start + len(keyword)
		if !ascii || (isBoundary(text, start-1) && isBoundary(text, end)) {
			starts = append(starts, start)
			offset = end
		} else {
			offset = start + 1
		}
		if offset >= len(text) {
			return starts
		}
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isBoundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := text[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}
