package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"aiboyfriend/pkg/emotion"
)

const DefaultBaseURL = "https://api-inference.huggingface.co/models"

// DefaultModels are tried in order: Chinese sentiment first, English emotion second.
var DefaultModels = []string{
	"uer/roberta-base-finetuned-chinanews-chinese",
	"j-hartmann/emotion-english-distilroberta-base",
}

// ErrEmptyResult is returned when a model answers with no labels.
var ErrEmptyResult = errors.New("huggingface: empty classification result")

// APIError captures non-2xx responses to allow inspection of the status code.
type APIError struct {
	Model      string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model %s: api status %d: %s", e.Model, e.StatusCode, e.Body)
}

// KeyState tracks the health of an API token
type KeyState struct {
	Key          string
	FailureCount int
	LastUsed     time.Time
	LastSuccess  time.Time
}

// Options tune a Client. Zero values pick the defaults.
type Options struct {
	BaseURL       string
	Models        []string
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// Client calls the HuggingFace Inference API text-classification endpoint.
// It implements emotion.Classifier.
type Client struct {
	keys    []*KeyState
	keyMu   sync.RWMutex
	client  *http.Client
	baseURL string
	models  []string
	limiter *rate.Limiter
}

type request struct {
	Inputs string `json:"inputs"`
}

// NewClient creates a client with support for multiple API tokens (comma-separated).
// An empty token list still works against the anonymous tier.
func NewClient(apiKeys string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if len(opts.Models) == 0 {
		opts.Models = DefaultModels
	}
	if opts.Timeout <= 0 {
		opts.Timeout = emotion.DefaultTimeout
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	var keys []*KeyState
	for _, k := range strings.Split(apiKeys, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, &KeyState{Key: k})
		}
	}
	if len(keys) == 0 {
		log.Println("Warning: No HuggingFace API key provided, using anonymous access")
	} else {
		log.Printf("Loaded %d HuggingFace API key(s)", len(keys))
	}

	return &Client{
		keys:    keys,
		client:  &http.Client{Timeout: opts.Timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		models:  opts.Models,
		limiter: rate.NewLimiter(limit, opts.Burst),
	}
}

// Models returns the models in the order they are tried.
func (c *Client) Models() []string {
	return append([]string(nil), c.models...)
}

// getBestKey returns the API key with the least failures
func (c *Client) getBestKey() *KeyState {
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()

	if len(c.keys) == 0 {
		return nil
	}

	best := c.keys[0]
	for _, k := range c.keys[1:] {
		if k.FailureCount < best.FailureCount {
			best = k
		}
	}
	return best
}

func (c *Client) recordSuccess(key *KeyState) {
	if key == nil {
		return
	}
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	key.LastSuccess = time.Now()
	key.LastUsed = time.Now()
	if key.FailureCount > 0 {
		key.FailureCount--
	}
}

func (c *Client) recordFailure(key *KeyState) {
	if key == nil {
		return
	}
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	key.FailureCount++
	key.LastUsed = time.Now()
}

// Classify returns the label distribution for text, falling through the model
// list until one answers.
func (c *Client) Classify(ctx context.Context, text string) ([]emotion.Label, error) {
	var lastErr error

	for _, model := range c.models {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		keyState := c.getBestKey()
		labels, err := c.classifyWithKey(ctx, model, text, keyState)

		var apiErr *APIError
		if errors.As(err, &apiErr) && isKeyError(apiErr.StatusCode) {
			c.recordFailure(keyState)
			if next := c.getBestKey(); next != nil && next != keyState {
				log.Printf("HuggingFace key rejected (%d), trying another key...", apiErr.StatusCode)
				keyState = next
				labels, err = c.classifyWithKey(ctx, model, text, keyState)
			}
		}

		if err == nil {
			c.recordSuccess(keyState)
			return labels, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		log.Printf("HuggingFace model %s failed: %v", model, err)
		lastErr = err
	}

	return nil, fmt.Errorf("all models exhausted: %w", lastErr)
}

func isKeyError(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusUnauthorized || status == http.StatusForbidden
}

func (c *Client) classifyWithKey(ctx context.Context, model, text string, key *KeyState) ([]emotion.Label, error) {
	body, err := json.Marshal(request{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key != nil {
		req.Header.Set("Authorization", "Bearer "+key.Key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Model: model, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return parseLabels(raw)
}

// parseLabels accepts both [[{label,score}]] and [{label,score}] shapes.
func parseLabels(raw []byte) ([]emotion.Label, error) {
	var nested [][]emotion.Label
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, ErrEmptyResult
		}
		return canonicalize(nested[0]), nil
	}

	var flat []emotion.Label
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(flat) == 0 {
		return nil, ErrEmptyResult
	}
	return canonicalize(flat), nil
}

// canonicalize maps star-rating style labels such as
// "positive (stars 4 and 5)" onto plain polarity names.
func canonicalize(labels []emotion.Label) []emotion.Label {
	out := make([]emotion.Label, len(labels))
	for i, l := range labels {
		name := strings.ToLower(strings.TrimSpace(l.Label))
		switch {
		case strings.HasPrefix(name, "positive"):
			name = "positive"
		case strings.HasPrefix(name, "negative"):
			name = "negative"
		case strings.HasPrefix(name, "neutral"):
			name = "neutral"
		}
		out[i] = emotion.Label{Label: name, Score: l.Score}
	}
	return out
}
