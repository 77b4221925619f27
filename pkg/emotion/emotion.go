package emotion

import (
	"context"
	"log"
	"math"
	"strings"
	"time"
	"unicode"
)

// Source identifies which scoring path produced a Result.
type Source string

const (
	SourceModel   Source = "model"
	SourceKeyword Source = "keyword"
)

// PositiveThreshold is the score above which a message counts as positive.
const PositiveThreshold = 0.1

// DefaultTimeout bounds a single remote classification call.
const DefaultTimeout = 10 * time.Second

// CJK results dominated by "neutral" are discarded when neither polarity leads
// by at least ambiguousLeanMargin.
const (
	ambiguousNeutralShare = 0.6
	ambiguousLeanMargin   = 0.2
)

// Label is one {label, score} pair returned by a remote classifier.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Result is the signed emotion score for a single message.
type Result struct {
	Score      float64
	IsPositive bool
	Source     Source
	Labels     []Label         // remote labels, model path only
	Details    *KeywordDetails // keyword path only
}

// Classifier is the remote sentiment classifier. Implementations must honour
// ctx cancellation and return an error for any failure.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Label, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) ([]Label, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) ([]Label, error) {
	return f(ctx, text)
}

var positiveLabels = map[string]bool{
	"joy": true, "love": true, "surprise": true, "caring": true, "positive": true,
	"happy": true, "excitement": true, "optimism": true,
}

var negativeLabels = map[string]bool{
	"sadness": true, "anger": true, "fear": true, "disgust": true, "negative": true,
	"disappointment": true, "pessimism": true,
}

// Scorer turns message text into a Result. It always terminates with a result:
// remote failures fall back to the keyword heuristic.
type Scorer struct {
	classifier Classifier
	timeout    time.Duration
}

// NewScorer creates a scorer. A nil classifier means keyword-only scoring.
func NewScorer(classifier Classifier, timeout time.Duration) *Scorer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scorer{
		classifier: classifier,
		timeout:    timeout,
	}
}

// Analyze scores text, preferring the remote classifier.
func (s *Scorer) Analyze(ctx context.Context, text string) Result {
	if s == nil || s.classifier == nil {
		return Fallback(text)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	labels, err := s.classifier.Classify(ctx, text)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Printf("Emotion classifier failed, using keyword fallback: %v", err)
		return Fallback(text)
	}

	result, ok := fromLabels(labels, IsCJK(text))
	if !ok {
		log.Printf("Emotion classifier result ambiguous (%d labels), using keyword fallback", len(labels))
		return Fallback(text)
	}

	return result
}

// fromLabels folds remote labels into a Result. It reports false when the
// result should be discarded in favour of the keyword heuristic.
func fromLabels(labels []Label, isCJK bool) (Result, bool) {
	var positive, negative, neutral float64

	for _, l := range labels {
		if math.IsNaN(l.Score) || math.IsInf(l.Score, 0) || l.Score < 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(l.Label))
		switch {
		case positiveLabels[name]:
			positive += l.Score
		case negativeLabels[name]:
			negative += l.Score
		case name == "neutral":
			neutral += l.Score
		}
	}

	if positive == 0 && negative == 0 {
		return Result{}, false
	}
	if isCJK && neutral > ambiguousNeutralShare && math.Abs(positive-negative) < ambiguousLeanMargin {
		return Result{}, false
	}

	score := (positive - negative) / (positive + negative + neutral)
	score = clamp(score, -1, 1)

	kept := make([]Label, len(labels))
	copy(kept, labels)

	return Result{
		Score:      score,
		IsPositive: score > PositiveThreshold,
		Source:     SourceModel,
		Labels:     kept,
	}, true
}

// IsCJK reports whether text contains any CJK ideograph.
func IsCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
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
