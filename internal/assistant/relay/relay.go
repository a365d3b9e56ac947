// Package relay forwards the generation stream into the session state
// store, one fragment at a time, in arrival order.
package relay

import (
	"context"
	"errors"
	"io"

	"github.com/cloudwego/eino/schema"

	errx "github.com/genius-ai/assistant/internal/core/error"
	logx "github.com/genius-ai/assistant/pkg/logger"

	"github.com/genius-ai/assistant/internal/assistant/store"
)

// Relay drives exactly one assistant turn per stream.
type Relay struct {
	store *store.Store
}

func New(st *store.Store) *Relay {
	return &Relay{store: st}
}

// Run consumes the stream until it ends, fails, or the context is
// cancelled. The first fragment opens the assistant turn; every fragment
// is appended in arrival order and never truncated or reordered.
// Cancellation is cooperative: it is observed between fragments only, so
// a received fragment is always applied in full.
//
// Whatever the outcome, the assistant turn (partial or complete, possibly
// absent when nothing arrived) is finalized and the generation slot
// released. An upstream failure is returned for user-visible reporting;
// cancellation is not an error.
func (r *Relay) Run(ctx context.Context, sr *schema.StreamReader[*schema.Message]) error {
	defer sr.Close()
	defer r.store.FinalizeAssistantMessage(ctx)

	fragments := 0
	for {
		if ctx.Err() != nil {
			logx.Debug().Int("fragments", fragments).Msg("generation cancelled")
			return nil
		}

		msg, recvErr := sr.Recv()
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				logx.Debug().Int("fragments", fragments).Msg("generation stream complete")
				return nil
			}
			if errors.Is(recvErr, context.Canceled) || ctx.Err() != nil {
				logx.Debug().Int("fragments", fragments).Msg("generation cancelled")
				return nil
			}
			logx.Error().Err(recvErr).Int("fragments", fragments).Msg("generation stream failed")
			return errx.WrapUpstream(recvErr)
		}
		if ctx.Err() != nil {
			// Cancelled while waiting: the fragment boundary has passed,
			// stop without applying what was just received.
			logx.Debug().Int("fragments", fragments).Msg("generation cancelled")
			return nil
		}
		if msg == nil {
			continue
		}

		if fragments == 0 {
			r.store.BeginAssistantMessage(ctx)
		}
		r.store.AppendToAssistantMessage(ctx, msg.Content)
		fragments++
	}
}
