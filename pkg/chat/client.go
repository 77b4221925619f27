package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// thinkRegex matches <think>...</think> content, including newlines.
var thinkRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ErrNoProviders is returned when no provider has an API key.
var ErrNoProviders = errors.New("chat: no providers configured")

// Provider is one OpenAI-compatible endpoint in the fallback chain.
type Provider struct {
	Name    string
	BaseURL string
	Model   string
	APIKey  string
	Headers map[string]string
}

// Known providers, tried in this order by default.
var knownProviders = map[string]Provider{
	"openrouter": {
		Name:    "openrouter",
		BaseURL: "https://openrouter.ai/api/v1/",
		Model:   "openai/gpt-4o-mini",
		Headers: map[string]string{
			"HTTP-Referer": "discord.com",
			"X-Title":      "AI-Boyfriend-Bot",
		},
	},
	"together": {
		Name:    "together",
		BaseURL: "https://api.together.xyz/v1/",
		Model:   "meta-llama/Llama-2-7b-chat-hf",
	},
	"deepseek": {
		Name:    "deepseek",
		BaseURL: "https://api.deepseek.com/v1/",
		Model:   "deepseek-chat",
	},
}

// ResolveProviders returns the named providers in order, attaching keys and
// skipping those without one.
func ResolveProviders(names []string, keys map[string]string) []Provider {
	var out []Provider
	for _, name := range names {
		p, ok := knownProviders[strings.ToLower(name)]
		if !ok {
			log.Printf("Unknown chat provider %q, skipping", name)
			continue
		}
		p.APIKey = strings.TrimSpace(keys[p.Name])
		if p.APIKey == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Reply is a generated answer.
type Reply struct {
	Content  string
	Tokens   int
	Provider string
	Fallback bool
}

type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client tries each provider in order; the first success wins.
type Client struct {
	providers []Provider
	clients   []openai.Client
	opts      Options
	intn      func(int) int
}

func NewClient(providers []Provider, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}

	clients := make([]openai.Client, len(providers))
	for i, p := range providers {
		reqOpts := []option.RequestOption{
			option.WithBaseURL(p.BaseURL),
			option.WithAPIKey(p.APIKey),
			option.WithMaxRetries(0),
		}
		for k, v := range p.Headers {
			reqOpts = append(reqOpts, option.WithHeader(k, v))
		}
		clients[i] = openai.NewClient(reqOpts...)
	}

	if len(providers) == 0 {
		log.Println("Warning: No chat providers configured, only fallback replies will be sent")
	} else {
		names := make([]string, len(providers))
		for i, p := range providers {
			names[i] = p.Name
		}
		log.Printf("Loaded chat providers: %s", strings.Join(names, " -> "))
	}

	return &Client{
		providers: providers,
		clients:   clients,
		opts:      opts,
		intn:      rand.Intn,
	}
}

// Generate returns a reply for messages. The Reply is always usable: when every
// provider fails it is a canned reply for the user's intimacy with Fallback
// set, and the error describes the last failure.
func (c *Client) Generate(ctx context.Context, messages []Message, intimacy int) (Reply, error) {
	var lastErr error = ErrNoProviders

	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		start := time.Now()
		content, tokens, err := c.complete(ctx, c.clients[i], p, messages)
		if err != nil {
			log.Printf("Chat provider %s failed after %v: %v", p.Name, time.Since(start), err)
			lastErr = fmt.Errorf("provider %s: %w", p.Name, err)
			continue
		}

		log.Printf("Chat provider %s success (took %v, tokens=%d)", p.Name, time.Since(start), tokens)
		return Reply{Content: content, Tokens: tokens, Provider: p.Name}, nil
	}

	return Reply{
		Content:  pickFallbackReply(intimacy, c.intn),
		Fallback: true,
	}, lastErr
}

func (c *Client) complete(ctx context.Context, client openai.Client, p Provider, messages []Message) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.Model),
		Messages:    toParams(messages),
		Temperature: openai.Float(c.opts.Temperature),
		MaxTokens:   openai.Int(int64(c.opts.MaxTokens)),
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", 0, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", 0, fmt.Errorf("empty response")
	}

	content := strings.TrimSpace(thinkRegex.ReplaceAllString(resp.Choices[0].Message.Content, ""))
	if content == "" {
		return "", 0, fmt.Errorf("empty content")
	}

	tokens := int(resp.Usage.TotalTokens)
	if tokens == 0 {
		tokens = EstimateTokens(content)
	}
	return content, tokens, nil
}

func toParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case "system":
			out[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			out[i] = openai.AssistantMessage(msg.Content)
		default:
			out[i] = openai.UserMessage(msg.Content)
		}
	}
	return out
}
