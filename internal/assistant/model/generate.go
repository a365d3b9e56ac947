package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Variant selects which upstream model serves a request.
type Variant string

const (
	// VariantText serves text-only conversations with the full transcript
	// as context.
	VariantText Variant = "text"
	// VariantVision serves submissions carrying images; only the latest
	// user turn is sent alongside the image parts.
	VariantVision Variant = "vision"
)

// Request is the provider-facing payload produced by the prompt composer.
type Request struct {
	Variant  Variant
	Messages []*schema.Message
}

// Generator produces the incremental output stream for a composed
// request. Exactly one upstream call is made per submission; the stream
// is lazy, finite and non-restartable, and yields fragments in the exact
// order the provider emits them (Recv until io.EOF).
type Generator interface {
	Stream(ctx context.Context, req Request) (*schema.StreamReader[*schema.Message], error)
}
