package main

import (
	"image/color"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mojibot/pkg/bot"
	"mojibot/pkg/cache"
	"mojibot/pkg/config"
	"mojibot/pkg/llm"
	"mojibot/pkg/memory"
	"mojibot/pkg/sticker"
	"mojibot/pkg/surreal"
	"mojibot/pkg/twemoji"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
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

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal("Missing required environment variable: DISCORD_TOKEN")
	}

	// Chat client is optional: without a key the ai command answers with a
	// fixed disabled notice.
	var chatClient bot.ChatClient
	if apiKeys := os.Getenv("OPENAI_API_KEY"); apiKeys != "" {
		chatClient = llm.NewClient(
			apiKeys,
			os.Getenv("OPENAI_BASE_URL"),
			cfg.ModelSettings.Temperature,
			cfg.ModelSettings.TopP,
			nil,
		)
		log.Println("Chat client initialized")
	} else {
		log.Println("OPENAI_API_KEY not set, ai command disabled")
	}

	// Glyph cache is optional.
	var glyphCache twemoji.Cache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisCache, err := cache.NewRedisCache(redisURL, "mojibot")
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		glyphCache = redisCache
		log.Println("Redis glyph cache initialized")
	} else {
		log.Println("REDIS_URL not set, glyph caching disabled")
	}

	cacheTTL := time.Duration(cfg.Glyphs.CacheTTLHours * float64(time.Hour))
	if cacheTTL <= 0 {
		cacheTTL = cache.GlyphTTL
	}
	glyphs := twemoji.NewClient(cfg.Glyphs.BaseURL, glyphCache, cacheTTL)

	var background color.Color
	if bg, err := sticker.ParseHexColor(cfg.Sticker.Background); err == nil {
		background = bg
	} else {
		log.Printf("Invalid background color %q, using default", cfg.Sticker.Background)
	}

	composer, err := sticker.NewComposer(glyphs, sticker.Options{
		CanvasWidth:   cfg.Sticker.CanvasWidth,
		CanvasHeight:  cfg.Sticker.CanvasHeight,
		MarginFrac:    cfg.Sticker.MarginFrac,
		StartFontSize: cfg.Sticker.StartFontSize,
		MinFontSize:   cfg.Sticker.MinFontSize,
		FontStep:      cfg.Sticker.FontStep,
		LineHeightMul: cfg.Sticker.LineHeightMul,
	}, background)
	if err != nil {
		log.Fatalf("Failed to initialize sticker composer: %v", err)
	}

	// Conversation history: SurrealDB when configured, in-memory otherwise.
	var store memory.Store
	surrealHost := os.Getenv("SURREAL_DB_HOST")
	if surrealHost != "" {
		surrealUser := os.Getenv("SURREAL_DB_USER")
		surrealPass := os.Getenv("SURREAL_DB_PASS")
		surrealNS := os.Getenv("SURREAL_DB_NAMESPACE")
		surrealDB := os.Getenv("SURREAL_DB_DATABASE")
		if surrealNS == "" {
			surrealNS = "mojibot"
		}
		if surrealDB == "" {
			surrealDB = "history"
		}

		// Add protocol if missing
		if !strings.HasPrefix(surrealHost, "ws://") && !strings.HasPrefix(surrealHost, "wss://") {
			surrealHost = "wss://" + surrealHost + "/rpc"
		}

		log.Printf("Connecting to SurrealDB at %s (NS: %s, DB: %s)", surrealHost, surrealNS, surrealDB)
		surrealClient, err := surreal.NewClient(surrealHost, surrealUser, surrealPass, surrealNS, surrealDB)
		if err != nil {
			log.Fatalf("Failed to connect to SurrealDB: %v", err)
		}
		defer surrealClient.Close()
		store = memory.NewSurrealStore(surrealClient)
	} else {
		log.Println("SURREAL_DB_HOST not set, keeping chat history in memory")
		store = memory.NewMemStore()
	}

	handler := bot.NewHandler(composer, chatClient, store, cfg.CommandPrefix)

	// Create Discord Session
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}

	dg.AddHandler(handler.MessageCreate)
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	if err := dg.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	handler.SetBotID(dg.State.User.ID)

	log.Println("Mojibot is now running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	dg.Close()
}
