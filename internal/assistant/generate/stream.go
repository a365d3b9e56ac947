package generate

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/cloudwego/eino/schema"

	errx "github.com/genius-ai/assistant/internal/core/error"
	logx "github.com/genius-ai/assistant/pkg/logger"

	"github.com/genius-ai/assistant/internal/assistant/model"
)

// Stream makes the single upstream call for a composed request and
// returns the provider's fragment stream. Fragments arrive in provider
// order; there is no retry and the stream cannot be restarted.
func (cm *ChatModels) Stream(ctx context.Context, req model.Request) (*schema.StreamReader[*schema.Message], error) {
	if err := validateImageParts(req.Messages); err != nil {
		return nil, err
	}

	chatModel := cm.Text
	modelName := cm.TextModelName
	if req.Variant == model.VariantVision {
		chatModel = cm.Vision
		modelName = cm.VisionModelName
	}

	logx.Debug().
		Str("variant", string(req.Variant)).
		Str("model", modelName).
		Int("messages", len(req.Messages)).
		Msg("starting generation stream")

	sr, err := chatModel.Stream(ctx, req.Messages)
	if err != nil {
		logx.Error().Err(err).Str("model", modelName).Msg("upstream stream request failed")
		return nil, errx.WrapUpstream(err)
	}
	return sr, nil
}

// validateImageParts checks that every image payload decodes as base64
// before anything is sent, so a malformed attachment never burns the one
// upstream attempt.
func validateImageParts(messages []*schema.Message) error {
	index := 0
	for _, msg := range messages {
		for _, part := range msg.MultiContent {
			if part.Type != schema.ChatMessagePartTypeImageURL {
				continue
			}
			if part.ImageURL == nil {
				return &errx.MalformedAttachmentError{Index: index, Err: errors.New("missing image payload")}
			}
			if err := decodeDataURL(part.ImageURL.URL); err != nil {
				return &errx.MalformedAttachmentError{Index: index, Err: err}
			}
			index++
		}
	}
	return nil
}

func decodeDataURL(url string) error {
	_, payload, found := strings.Cut(url, ";base64,")
	if !found {
		return errors.New("not a base64 data URL")
	}
	_, err := base64.StdEncoding.DecodeString(payload)
	return err
}
