package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Step is one rung of the intimacy step function: het >= MinHET grants Delta.
type Step struct {
	MinHET int `yaml:"min_het"`
	Delta  int `yaml:"delta"`
}

type Config struct {
	Intimacy struct {
		Steps           []Step `yaml:"steps"`
		ThresholdBonus  int    `yaml:"threshold_bonus"`
		MaxGain         int    `yaml:"max_gain"`
		ThresholdGroupA int    `yaml:"threshold_group_a"`
		ThresholdGroupB int    `yaml:"threshold_group_b"`
	} `yaml:"intimacy"`
	HET struct {
		BaseCap            float64 `yaml:"base_cap"`
		FinalCap           float64 `yaml:"final_cap"`
		PositiveMultiplier float64 `yaml:"positive_multiplier"`
		NegativeMultiplier float64 `yaml:"negative_multiplier"`
		ModelMultiplier    float64 `yaml:"model_multiplier"`
		KeywordMultiplier  float64 `yaml:"keyword_multiplier"`
	} `yaml:"het"`
	Cooldown struct {
		DurationSeconds        int     `yaml:"duration_seconds"`
		Reduction              float64 `yaml:"reduction"`
		CleanupIntervalMinutes float64 `yaml:"cleanup_interval_minutes"`
		Backend                string  `yaml:"backend"`
	} `yaml:"cooldown"`
	Emotion struct {
		TimeoutSeconds float64  `yaml:"timeout_seconds"`
		CacheSize      int      `yaml:"cache_size"`
		Models         []string `yaml:"models"`
		RatePerSecond  float64  `yaml:"rate_per_second"`
	} `yaml:"emotion"`
	DOL struct {
		CostPerMessage int `yaml:"cost_per_message"`
		InitialGroupA  int `yaml:"initial_group_a"`
		InitialGroupB  int `yaml:"initial_group_b"`
	} `yaml:"dol"`
	Chat struct {
		HistorySize    int      `yaml:"history_size"`
		Temperature    float64  `yaml:"temperature"`
		MaxTokens      int      `yaml:"max_tokens"`
		TimeoutSeconds float64  `yaml:"timeout_seconds"`
		Providers      []string `yaml:"providers"`
	} `yaml:"chat"`
	AB struct {
		GroupARatio float64 `yaml:"group_a_ratio"`
	} `yaml:"ab"`
}

// Default returns the built-in calibration.
func Default() *Config {
	c := &Config{}
	c.Intimacy.Steps = []Step{
		{MinHET: 80, Delta: 5},
		{MinHET: 50, Delta: 3},
		{MinHET: 20, Delta: 2},
		{MinHET: 5, Delta: 1},
	}
	c.Intimacy.ThresholdBonus = 2
	c.Intimacy.MaxGain = 10
	c.Intimacy.ThresholdGroupA = 120
	c.Intimacy.ThresholdGroupB = 100

	c.HET.BaseCap = 50
	c.HET.FinalCap = 100
	c.HET.PositiveMultiplier = 1.2
	c.HET.NegativeMultiplier = 0.8
	c.HET.ModelMultiplier = 1.0
	c.HET.KeywordMultiplier = 0.7

	c.Cooldown.DurationSeconds = 300
	c.Cooldown.Reduction = 0.5
	c.Cooldown.CleanupIntervalMinutes = 10
	c.Cooldown.Backend = "memory"

	c.Emotion.TimeoutSeconds = 10
	c.Emotion.CacheSize = 1000
	c.Emotion.RatePerSecond = 5

	c.DOL.CostPerMessage = 30
	c.DOL.InitialGroupA = 300
	c.DOL.InitialGroupB = 400

	c.Chat.HistorySize = 5
	c.Chat.Temperature = 0.8
	c.Chat.MaxTokens = 500
	c.Chat.TimeoutSeconds = 30
	c.Chat.Providers = []string{"openrouter", "together", "deepseek"}

	c.AB.GroupARatio = 0.5
	return c
}

// LoadConfig reads path on top of the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Validate rejects calibrations that would break reward bounds.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Intimacy.Steps) == 0 {
		errs = append(errs, errors.New("intimacy.steps must not be empty"))
	}
	for i, s := range c.Intimacy.Steps {
		if s.Delta < 0 || s.MinHET < 0 {
			errs = append(errs, fmt.Errorf("intimacy.steps[%d] must be non-negative", i))
		}
		if i > 0 && s.MinHET >= c.Intimacy.Steps[i-1].MinHET {
			errs = append(errs, fmt.Errorf("intimacy.steps must be ordered by descending min_het (step %d)", i))
		}
	}
	if c.Intimacy.MaxGain <= 0 {
		errs = append(errs, errors.New("intimacy.max_gain must be positive"))
	}
	if c.Intimacy.ThresholdBonus < 0 {
		errs = append(errs, errors.New("intimacy.threshold_bonus must be non-negative"))
	}
	if c.HET.BaseCap <= 0 || c.HET.FinalCap <= 0 {
		errs = append(errs, errors.New("het caps must be positive"))
	}
	if c.HET.PositiveMultiplier < 0 || c.HET.NegativeMultiplier < 0 ||
		c.HET.ModelMultiplier < 0 || c.HET.KeywordMultiplier < 0 {
		errs = append(errs, errors.New("het multipliers must be non-negative"))
	}
	if c.Cooldown.DurationSeconds < 0 {
		errs = append(errs, errors.New("cooldown.duration_seconds must be non-negative"))
	}
	if c.Cooldown.Reduction < 0 || c.Cooldown.Reduction > 1 {
		errs = append(errs, errors.New("cooldown.reduction must be within [0, 1]"))
	}
	switch c.Cooldown.Backend {
	case "", "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cooldown.backend %q must be memory or redis", c.Cooldown.Backend))
	}
	if c.AB.GroupARatio < 0 || c.AB.GroupARatio > 1 {
		errs = append(errs, errors.New("ab.group_a_ratio must be within [0, 1]"))
	}
	if c.DOL.CostPerMessage < 0 {
		errs = append(errs, errors.New("dol.cost_per_message must be non-negative"))
	}

	return errors.Join(errs...)
}

func (c *Config) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown.DurationSeconds) * time.Second
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Cooldown.CleanupIntervalMinutes * float64(time.Minute))
}

func (c *Config) EmotionTimeout() time.Duration {
	return time.Duration(c.Emotion.TimeoutSeconds * float64(time.Second))
}

func (c *Config) ChatTimeout() time.Duration {
	return time.Duration(c.Chat.TimeoutSeconds * float64(time.Second))
}
