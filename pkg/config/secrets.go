package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Secrets are read from the environment (after godotenv has populated it).
type Secrets struct {
	DiscordToken     string `env:"DISCORD_TOKEN,required"`
	DiscordGuildID   string `env:"DISCORD_GUILD_ID"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	TogetherAPIKey   string `env:"TOGETHER_API_KEY"`
	DeepSeekAPIKey   string `env:"DEEPSEEK_API_KEY"`
	HuggingFaceKey   string `env:"HUGGINGFACE_API_KEY"`
	RedisURL         string `env:"REDIS_URL"`
	RedisPrefix      string `env:"REDIS_PREFIX" envDefault:"aiboyfriend:"`
	SurrealHost      string `env:"SURREAL_DB_HOST"`
	SurrealUser      string `env:"SURREAL_DB_USER"`
	SurrealPass      string `env:"SURREAL_DB_PASS"`
	SurrealNamespace string `env:"SURREAL_DB_NAMESPACE" envDefault:"aiboyfriend"`
	SurrealDatabase  string `env:"SURREAL_DB_DATABASE" envDefault:"aiboyfriend"`
}

// LoadSecrets parses Secrets from the process environment.
func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &s, nil
}

// HasSurreal reports whether SurrealDB persistence is configured.
func (s *Secrets) HasSurreal() bool {
	return s.SurrealHost != "" && s.SurrealUser != "" && s.SurrealPass != ""
}
