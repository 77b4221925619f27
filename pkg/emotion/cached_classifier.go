package emotion

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 1000

// CachedClassifier memoises remote classifications per model and text.
// Failures are never cached.
type CachedClassifier struct {
	classifier Classifier
	cache      *lru.Cache[string, []Label]
	model      string
}

func NewCachedClassifier(classifier Classifier, cacheSize int, model string) *CachedClassifier {
	cache, err := lru.New[string, []Label](cacheSize)
	if err != nil {
		log.Printf("Error creating LRU cache: %v. Using size %d.", err, defaultCacheSize)
		cache, _ = lru.New[string, []Label](defaultCacheSize)
	}

	return &CachedClassifier{
		classifier: classifier,
		cache:      cache,
		model:      model,
	}
}

func (c *CachedClassifier) Classify(ctx context.Context, text string) ([]Label, error) {
	sum := md5.Sum([]byte(text))
	key := fmt.Sprintf("%s:%s", c.model, hex.EncodeToString(sum[:]))

	if labels, ok := c.cache.Get(key); ok {
		return cloneLabels(labels), nil
	}

	labels, err := c.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, cloneLabels(labels))
	return labels, nil
}

// Len returns the number of cached classifications.
func (c *CachedClassifier) Len() int {
	return c.cache.Len()
}

func cloneLabels(labels []Label) []Label {
	out := make([]Label, len(labels))
	copy(out, labels)
	return out
}
