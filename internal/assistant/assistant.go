// Package assistant composes the generation pipeline: attachments are
// encoded, a provider request is built from the transcript, the upstream
// stream is relayed into the session state store, and the store is the
// single source of truth the presentation layer reads from.
package assistant

import (
	"context"
	"strings"
	"sync"

	errx "github.com/genius-ai/assistant/internal/core/error"
	logx "github.com/genius-ai/assistant/pkg/logger"

	"github.com/genius-ai/assistant/internal/assistant/encoder"
	"github.com/genius-ai/assistant/internal/assistant/generate"
	"github.com/genius-ai/assistant/internal/assistant/model"
	"github.com/genius-ai/assistant/internal/assistant/prompt"
	"github.com/genius-ai/assistant/internal/assistant/relay"
	"github.com/genius-ai/assistant/internal/assistant/store"
)

// Config holds everything needed to compose the full pipeline end-to-end.
type Config struct {
	APIKey  string
	BaseURL string
	Text    model.TextModelConfig
	Vision  model.VisionModelConfig
	Storage model.StorageConfig

	Gate model.AccessGate
	// Backend is the durable storage; nil degrades silently to
	// in-memory-only state.
	Backend model.StorageBackend
}

// Assistant is the submission and cancellation entry point for one
// session.
type Assistant struct {
	gate      model.AccessGate
	generator model.Generator
	store     *store.Store
	relay     *relay.Relay

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

// New builds the chat models and the session store. A missing API key
// surfaces errx.ErrConfiguration here, before anything else happens.
func New(ctx context.Context, cfg Config) (*Assistant, error) {
	generator, err := generate.NewChatModels(ctx, generate.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Text:    &cfg.Text,
		Vision:  &cfg.Vision,
	})
	if err != nil {
		return nil, err
	}
	return newAssistant(cfg.Gate, generator, store.New(cfg.Backend, cfg.Storage.Profile)), nil
}

func newAssistant(gate model.AccessGate, generator model.Generator, st *store.Store) *Assistant {
	return &Assistant{
		gate:      gate,
		generator: generator,
		store:     st,
		relay:     relay.New(st),
	}
}

// Store exposes the session state store for the presentation layer.
// Reads only; mutation stays inside the pipeline.
func (a *Assistant) Store() *store.Store {
	return a.store
}

// Bootstrap loads cached transcript and history, but only once the gate
// reports a signed-in user; cached state is never shown before that.
func (a *Assistant) Bootstrap(ctx context.Context) error {
	if !a.gate.IsAuthenticated() {
		return errx.ErrUnauthenticated
	}
	if token, ok := a.gate.CurrentToken(); ok {
		a.store.SetAuthToken(token)
	}
	a.store.Bootstrap(ctx)
	return nil
}

// Logout clears both durable logs and the cached token.
func (a *Assistant) Logout(ctx context.Context) {
	a.stop()
	a.store.Clear(ctx, store.LogBoth)
}

// Submit accepts one user submission and starts a generation. It returns
// immediately; progress is observable through the store. Validation
// failures and the single-flight rejection surface here, before any
// session state is touched.
func (a *Assistant) Submit(ctx context.Context, text string, files []encoder.File) error {
	if !a.gate.IsAuthenticated() {
		return errx.ErrUnauthenticated
	}
	if strings.TrimSpace(text) == "" && len(files) == 0 {
		return errx.ErrEmptySubmission
	}
	if !a.store.TryBeginGeneration() {
		return errx.ErrGenerationInFlight
	}

	attachments, err := encoder.EncodeFiles(ctx, files)
	if err != nil {
		// Atomic rejection: release the slot with the session untouched.
		a.store.FinalizeAssistantMessage(ctx)
		return err
	}

	// History insertion precedes the generation's start and survives any
	// later failure.
	a.store.RecordSubmission(ctx, text)
	a.store.AppendUserMessage(ctx, text, len(attachments))

	req := prompt.Compose(a.store.Transcript(), attachments)

	// The generation outlives the submission call; only Stop cancels it.
	genCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	a.mu.Lock()
	a.cancel = cancel
	a.done = done
	a.lastErr = nil
	a.mu.Unlock()

	go a.generate(genCtx, cancel, done, req)
	return nil
}

func (a *Assistant) generate(ctx context.Context, cancel context.CancelFunc, done chan struct{}, req model.Request) {
	defer close(done)
	defer cancel()

	sr, err := a.generator.Stream(ctx, req)
	if err != nil {
		logx.Error().Err(err).Str("variant", string(req.Variant)).Msg("generation failed to start")
		a.store.FinalizeAssistantMessage(ctx)
		a.setLastErr(err)
		return
	}

	if err := a.relay.Run(ctx, sr); err != nil {
		a.setLastErr(err)
	}
}

// Stop cancels the in-flight generation. The partial assistant turn is
// kept as-is. No effect while idle.
func (a *Assistant) Stop() {
	a.stop()
}

func (a *Assistant) stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current generation finishes. Used by tests and
// the demo driver; the UI relies on store observation instead.
func (a *Assistant) Wait() {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done != nil {
		<-done
	}
}

// LastError reports the failure of the most recent generation, nil when
// it completed or was cancelled. Submission resets it.
func (a *Assistant) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Assistant) setLastErr(err error) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
}
