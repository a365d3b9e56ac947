package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/genius-ai/assistant/internal/assistant"
	"github.com/genius-ai/assistant/internal/assistant/model"
	"github.com/genius-ai/assistant/internal/assistant/store"
	"github.com/genius-ai/assistant/internal/core"
	logx "github.com/genius-ai/assistant/pkg/logger"
	pkgredis "github.com/genius-ai/assistant/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant demo,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Assistant configs
	Text    model.TextModelConfig
	Vision  model.VisionModelConfig
	Storage model.StorageConfig
}

// staticGate stands in for the external auth collaborator in this demo:
// always signed in, with a fixed opaque token.
type staticGate struct {
	token string
}

func (g staticGate) IsAuthenticated() bool        { return g.token != "" }
func (g staticGate) CurrentToken() (string, bool) { return g.token, g.token != "" }

func main() {
	fmt.Println("Genius assistant pipeline demo...")
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.EnvironmentFromOS()})

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	fmt.Println("Connected to Redis successfully")

	ttl, err := time.ParseDuration(envCfg.Storage.TTL)
	if err != nil {
		log.Fatalf("Invalid STORAGE_TTL '%s': %v", envCfg.Storage.TTL, err)
	}

	asst, err := assistant.New(ctx, assistant.Config{
		APIKey:  envCfg.APIKey,
		BaseURL: envCfg.BaseURL,
		Text:    envCfg.Text,
		Vision:  envCfg.Vision,
		Storage: envCfg.Storage,
		Gate:    staticGate{token: "demo-token"},
		Backend: store.NewRedisBackend(rdb, ttl),
	})
	if err != nil {
		log.Fatalf("Failed to build assistant: %v", err)
	}

	if err := asst.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap session: %v", err)
	}
	fmt.Printf("Restored %d transcript messages, %d history entries\n",
		len(asst.Store().Transcript()), len(asst.Store().History()))

	queries := []string{
		"Hello! What can you help me with?",
		"Give me three ideas for a weekend project in Go.",
		"Which of those fits a single afternoon best?",
	}

	for i, q := range queries {
		fmt.Printf("\nQuery %d: %q\n", i+1, q)
		if err := asst.Submit(ctx, q, nil); err != nil {
			log.Fatalf("Submission %d rejected: %v", i+1, err)
		}
		asst.Wait()
		if err := asst.LastError(); err != nil {
			log.Fatalf("Generation %d failed: %v", i+1, err)
		}

		transcript := asst.Store().Transcript()
		fmt.Printf("Assistant: %s\n", transcript[len(transcript)-1].Content)
	}

	fmt.Printf("\nHistory now holds %d submitted queries\n", len(asst.Store().History()))
	fmt.Println("Demo completed successfully")
}
