// Package generate owns the upstream Gemini call: one client, one chat
// model per variant, one attempt per submission.
package generate

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	errx "github.com/genius-ai/assistant/internal/core/error"
	logx "github.com/genius-ai/assistant/pkg/logger"

	"github.com/genius-ai/assistant/internal/assistant/model"
)

// Config holds everything needed to construct both chat models.
type Config struct {
	APIKey  string
	BaseURL string
	Text    *model.TextModelConfig
	Vision  *model.VisionModelConfig
}

// ChatModels holds the text and vision chat models, keyed by variant at
// request time.
type ChatModels struct {
	Text            *gemini.ChatModel
	Vision          *gemini.ChatModel
	TextModelName   string
	VisionModelName string
}

// NewChatModels creates the shared Gemini client and both chat models.
// A missing API key is a configuration error surfaced before any client
// is built; no generation is ever attempted without a credential.
func NewChatModels(ctx context.Context, config Config) (*ChatModels, error) {
	if config.APIKey == "" {
		logx.Error().Msg("Gemini API key is not configured")
		return nil, errx.ErrConfiguration
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	textModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Text.Model,
		Temperature: &config.Text.Temperature,
		MaxTokens:   &config.Text.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating text model")
		return nil, fmt.Errorf("error creating text model: %w", err)
	}

	visionModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Vision.Model,
		Temperature: &config.Vision.Temperature,
		MaxTokens:   &config.Vision.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating vision model")
		return nil, fmt.Errorf("error creating vision model: %w", err)
	}

	return &ChatModels{
		Text:            textModel,
		Vision:          visionModel,
		TextModelName:   config.Text.Model,
		VisionModelName: config.Vision.Model,
	}, nil
}

var _ model.Generator = (*ChatModels)(nil)
