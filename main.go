package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"aiboyfriend/pkg/bot"
	"aiboyfriend/pkg/cache"
	"aiboyfriend/pkg/chat"
	"aiboyfriend/pkg/config"
	"aiboyfriend/pkg/cooldown"
	"aiboyfriend/pkg/emotion"
	"aiboyfriend/pkg/huggingface"
	"aiboyfriend/pkg/pipeline"
	"aiboyfriend/pkg/profile"
	"aiboyfriend/pkg/reward"
	"aiboyfriend/pkg/surreal"
)

func main() {
	// Load config.yml
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load .env for secrets
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatalf("Failed to load secrets: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// Redis is optional: it backs the cooldown store and the profile cache
	var redisCache *cache.Cache
	if secrets.RedisURL != "" {
		redisCache, err = cache.NewRedisCache(secrets.RedisURL, secrets.RedisPrefix)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		log.Println("Connected to Redis")
	}

	// Profile store: SurrealDB when configured, otherwise in memory
	profileOpts := profile.OptionsFromConfig(cfg)
	var store profile.Store
	if secrets.HasSurreal() {
		host := secrets.SurrealHost
		// Add protocol if missing
		if !strings.HasPrefix(host, "ws://") && !strings.HasPrefix(host, "wss://") {
			host = "wss://" + host + "/rpc"
		}

		log.Printf("Connecting to SurrealDB at %s (NS: %s, DB: %s)", host, secrets.SurrealNamespace, secrets.SurrealDatabase)
		surrealClient, err := surreal.NewClient(ctx, host, secrets.SurrealUser, secrets.SurrealPass, secrets.SurrealNamespace, secrets.SurrealDatabase)
		if err != nil {
			log.Fatalf("Failed to connect to SurrealDB: %v", err)
		}
		defer surrealClient.Close()

		store = profile.NewSurrealStore(ctx, surrealClient, profileOpts)
	} else {
		log.Println("SurrealDB not configured, profiles are kept in memory")
		store = profile.NewMemoryStore(profileOpts)
	}
	if redisCache != nil {
		store = profile.NewCachedStore(store, redisCache)
	}

	// Emotion scoring: HuggingFace when a key is set, keyword heuristic otherwise
	var classifier emotion.Classifier
	if secrets.HuggingFaceKey != "" {
		hf := huggingface.NewClient(secrets.HuggingFaceKey, huggingface.Options{
			Models:        cfg.Emotion.Models,
			RatePerSecond: cfg.Emotion.RatePerSecond,
			Timeout:       cfg.EmotionTimeout(),
		})
		classifier = emotion.NewCachedClassifier(hf, cfg.Emotion.CacheSize, strings.Join(hf.Models(), ","))
	} else {
		log.Println("HUGGINGFACE_API_KEY not set, using keyword emotion scoring only")
	}
	scorer := emotion.NewScorer(classifier, cfg.EmotionTimeout())

	// Cooldown gate
	var cooldownStore cooldown.Store
	if cfg.Cooldown.Backend == "redis" && redisCache != nil {
		cooldownStore = cooldown.NewRedisStore(redisCache, cfg.CooldownDuration())
	} else {
		memStore := cooldown.NewMemoryStore(cfg.CooldownDuration())
		go memStore.RunCleanup(ctx, cfg.CleanupInterval())
		cooldownStore = memStore
	}
	gate := cooldown.NewGateFromConfig(cfg, cooldownStore)

	rewardPipeline := pipeline.New(scorer, reward.NewCalculator(reward.ParamsFromConfig(cfg)), gate)

	// Reply generation
	providers := chat.ResolveProviders(cfg.Chat.Providers, map[string]string{
		"openrouter": secrets.OpenRouterAPIKey,
		"together":   secrets.TogetherAPIKey,
		"deepseek":   secrets.DeepSeekAPIKey,
	})
	chatClient := chat.NewClient(providers, chat.Options{
		Temperature: cfg.Chat.Temperature,
		MaxTokens:   cfg.Chat.MaxTokens,
		Timeout:     cfg.ChatTimeout(),
	})

	// Initialize Bot Handler
	handler := bot.NewHandler(store, rewardPipeline, chatClient, gate, bot.OptionsFromConfig(cfg))

	// Create Discord Session
	dg, err := discordgo.New("Bot " + secrets.DiscordToken)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	// Register Handlers
	dg.AddHandler(handler.MessageCreate)
	dg.AddHandler(handler.InteractionCreate)

	// Open Connection
	if err := dg.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}
	defer dg.Close()

	// Set Bot ID in handler (so it can ignore itself)
	handler.SetBotID(dg.State.User.ID)

	// Register slash commands (empty guild ID = global)
	registeredCommands, err := bot.RegisterSlashCommands(dg, secrets.DiscordGuildID)
	if err != nil {
		log.Fatalf("Error registering slash commands: %v", err)
	}

	// Cleanup function to unregister commands on shutdown
	defer func() {
		if err := bot.UnregisterSlashCommands(dg, secrets.DiscordGuildID, registeredCommands); err != nil {
			log.Printf("Error unregistering slash commands: %v", err)
		}
	}()

	bot.SetStatus(&bot.DiscordSession{Session: dg})

	log.Println("AI boyfriend is now running. Press CTRL-C to exit.")

	<-ctx.Done()
	log.Println("Shutting down...")
}
