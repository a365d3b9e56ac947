package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SchemaRole maps the transcript role onto the eino role vocabulary.
// The Gemini component emits "model" on the wire for assistant turns.
func (r Role) SchemaRole() schema.RoleType {
	if r == RoleAssistant {
		return schema.Assistant
	}
	return schema.User
}

// Message is one turn in the transcript. CreatedAt is assigned once at
// creation and never mutated; the transcript is strict append order.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// AttachmentCount records how many images the user turn carried so a
	// reloaded transcript can still render the indicator. Image bytes
	// themselves are not persisted.
	AttachmentCount int `json:"attachmentCount,omitempty"`
}

// NewUserMessage creates a user turn stamped with the current time.
func NewUserMessage(content string, attachmentCount int) Message {
	return Message{
		Role:            RoleUser,
		Content:         content,
		CreatedAt:       time.Now(),
		AttachmentCount: attachmentCount,
	}
}

// NewAssistantMessage creates an empty assistant turn; the stream relay
// fills its content fragment by fragment.
func NewAssistantMessage() Message {
	return Message{
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
	}
}

// Attachment is an inline image payload attached to a single pending
// submission. Data is the standard base64 encoding of the raw bytes.
type Attachment struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// HistoryEntry records a submitted query independently of the transcript
// and of whether the generation that followed succeeded.
type HistoryEntry struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
