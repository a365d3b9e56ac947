// Package prompt builds the provider-facing request from the transcript
// and any pending attachments, and selects the model variant.
package prompt

import (
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/genius-ai/assistant/internal/assistant/model"
)

// Compose is a pure function: identical transcript and attachments always
// yield an identical request.
//
// With attachments the vision variant is selected and the payload is a
// single user message carrying the latest user turn's text (possibly
// empty) followed by the images in submission order. Prior turns are not
// replayed as multimodal context.
//
// Without attachments the text variant is selected and the payload is the
// full transcript in chronological order, user and assistant roles mapped
// onto the provider vocabulary.
func Compose(transcript []model.Message, attachments []model.Attachment) model.Request {
	if len(attachments) > 0 {
		return model.Request{
			Variant:  model.VariantVision,
			Messages: []*schema.Message{visionMessage(transcript, attachments)},
		}
	}
	return model.Request{
		Variant:  model.VariantText,
		Messages: textMessages(transcript),
	}
}

func visionMessage(transcript []model.Message, attachments []model.Attachment) *schema.Message {
	parts := make([]schema.ChatMessagePart, 0, len(attachments)+1)
	parts = append(parts, schema.ChatMessagePart{
		Type: schema.ChatMessagePartTypeText,
		Text: latestUserText(transcript),
	})
	for _, a := range attachments {
		parts = append(parts, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{
				URL:      DataURL(a),
				MIMEType: a.MIMEType,
			},
		})
	}
	return &schema.Message{
		Role:         schema.User,
		MultiContent: parts,
	}
}

func textMessages(transcript []model.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(transcript))
	for _, m := range transcript {
		switch m.Role {
		case model.RoleUser, model.RoleAssistant:
			messages = append(messages, &schema.Message{
				Role:    m.Role.SchemaRole(),
				Content: m.Content,
			})
		}
	}
	return messages
}

// latestUserText returns the most recent user turn's text, or "" when the
// transcript has none.
func latestUserText(transcript []model.Message) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == model.RoleUser {
			return transcript[i].Content
		}
	}
	return ""
}

// DataURL renders an attachment in the self-describing data-URL form the
// provider component consumes.
func DataURL(a model.Attachment) string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIMEType, a.Data)
}
