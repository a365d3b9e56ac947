package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/genius-ai/assistant/internal/core/error"

	"github.com/genius-ai/assistant/internal/assistant/encoder"
	"github.com/genius-ai/assistant/internal/assistant/model"
	"github.com/genius-ai/assistant/internal/assistant/store"
)

type fakeGate struct {
	authed bool
}

func (g fakeGate) IsAuthenticated() bool { return g.authed }

func (g fakeGate) CurrentToken() (string, bool) {
	if !g.authed {
		return "", false
	}
	return "test-token", true
}

// fakeGenerator records every request and delegates to the configured
// stream function.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []model.Request
	stream   func(ctx context.Context, req model.Request) (*schema.StreamReader[*schema.Message], error)
}

func (f *fakeGenerator) Stream(ctx context.Context, req model.Request) (*schema.StreamReader[*schema.Message], error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.stream(ctx, req)
}

func (f *fakeGenerator) recorded() []model.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

func fragmentStream(texts ...string) *schema.StreamReader[*schema.Message] {
	msgs := make([]*schema.Message, len(texts))
	for i, t := range texts {
		msgs[i] = &schema.Message{Role: schema.Assistant, Content: t}
	}
	return schema.StreamReaderFromArray(msgs)
}

func newTestAssistant(gen *fakeGenerator) *Assistant {
	return newAssistant(fakeGate{authed: true}, gen, store.New(store.NewMemoryBackend(), "test"))
}

func imageFiles(n int) []encoder.File {
	files := make([]encoder.File, n)
	for i := range files {
		files[i] = encoder.File{
			Name:     "img.png",
			MIMEType: "image/png",
			Reader:   strings.NewReader("pixels"),
		}
	}
	return files
}

func TestSubmitTextEndToEnd(t *testing.T) {
	gen := &fakeGenerator{
		stream: func(context.Context, model.Request) (*schema.StreamReader[*schema.Message], error) {
			return fragmentStream("Hi", " there"), nil
		},
	}
	a := newTestAssistant(gen)

	require.NoError(t, a.Submit(context.Background(), "Hello", nil))
	a.Wait()
	require.NoError(t, a.LastError())

	transcript := a.Store().Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, model.RoleUser, transcript[0].Role)
	assert.Equal(t, "Hello", transcript[0].Content)
	assert.Equal(t, model.RoleAssistant, transcript[1].Role)
	assert.Equal(t, "Hi there", transcript[1].Content)

	history := a.Store().History()
	require.Len(t, history, 1)
	assert.Equal(t, "Hello", history[0].Text)

	assert.False(t, a.Store().GenerationInFlight())

	requests := gen.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, model.VariantText, requests[0].Variant)
	require.Len(t, requests[0].Messages, 1)
	assert.Equal(t, "Hello", requests[0].Messages[0].Content)
}

func TestSubmitImagesSelectsVisionVariant(t *testing.T) {
	gen := &fakeGenerator{
		stream: func(context.Context, model.Request) (*schema.StreamReader[*schema.Message], error) {
			return fragmentStream("Nice picture"), nil
		},
	}
	a := newTestAssistant(gen)

	require.NoError(t, a.Submit(context.Background(), "", imageFiles(2)))
	a.Wait()
	require.NoError(t, a.LastError())

	// A submission without text creates no history entry.
	assert.Empty(t, a.Store().History())

	transcript := a.Store().Transcript()
	require.Len(t, transcript, 2)
	assert.Empty(t, transcript[0].Content)
	assert.Equal(t, 2, transcript[0].AttachmentCount)

	requests := gen.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, model.VariantVision, requests[0].Variant)
	require.Len(t, requests[0].Messages, 1)
	require.Len(t, requests[0].Messages[0].MultiContent, 3)
	assert.Equal(t, schema.ChatMessagePartTypeText, requests[0].Messages[0].MultiContent[0].Type)
	assert.Equal(t, schema.ChatMessagePartTypeImageURL, requests[0].Messages[0].MultiContent[1].Type)
	assert.Equal(t, schema.ChatMessagePartTypeImageURL, requests[0].Messages[0].MultiContent[2].Type)
}

func TestSubmitRejectedWhileGenerationInFlight(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](2)
	gen := &fakeGenerator{
		stream: func(context.Context, model.Request) (*schema.StreamReader[*schema.Message], error) {
			return sr, nil
		},
	}
	a := newTestAssistant(gen)

	require.NoError(t, a.Submit(context.Background(), "first", nil))

	err := a.Submit(context.Background(), "second", nil)
	assert.ErrorIs(t, err, errx.ErrGenerationInFlight)

	// The rejected submission touched neither log.
	assert.Len(t, a.Store().Transcript(), 1)
	assert.Len(t, a.Store().History(), 1)

	sw.Send(&schema.Message{Role: schema.Assistant, Content: "done"}, nil)
	sw.Close()
	a.Wait()
	require.NoError(t, a.LastError())
	assert.False(t, a.Store().GenerationInFlight())
}

func TestSubmitRequiresAuthentication(t *testing.T) {
	a := newAssistant(fakeGate{authed: false}, &fakeGenerator{}, store.New(nil, "test"))

	err := a.Submit(context.Background(), "Hello", nil)
	assert.ErrorIs(t, err, errx.ErrUnauthenticated)
	assert.Empty(t, a.Store().Transcript())
}

func TestSubmitRejectsEmptySubmission(t *testing.T) {
	a := newTestAssistant(&fakeGenerator{})

	err := a.Submit(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, errx.ErrEmptySubmission)
	assert.Empty(t, a.Store().Transcript())
	assert.Empty(t, a.Store().History())
}

func TestHistorySurvivesUpstreamFailure(t *testing.T) {
	gen := &fakeGenerator{
		stream: func(context.Context, model.Request) (*schema.StreamReader[*schema.Message], error) {
			return nil, errx.WrapUpstream(errors.New("model overloaded"))
		},
	}
	a := newTestAssistant(gen)

	require.NoError(t, a.Submit(context.Background(), "doomed query", nil))
	a.Wait()

	assert.ErrorIs(t, a.LastError(), errx.ErrUpstream)
	require.Len(t, a.Store().History(), 1)
	assert.Equal(t, "doomed query", a.Store().History()[0].Text)

	// The user turn stays; no assistant turn was ever opened.
	require.Len(t, a.Store().Transcript(), 1)
	assert.Equal(t, model.RoleUser, a.Store().Transcript()[0].Role)
	assert.False(t, a.Store().GenerationInFlight())
}

func TestAttachmentRejectionIsAtomic(t *testing.T) {
	gen := &fakeGenerator{
		stream: func(context.Context, model.Request) (*schema.StreamReader[*schema.Message], error) {
			return fragmentStream("unused"), nil
		},
	}
	a := newTestAssistant(gen)

	err := a.Submit(context.Background(), "look at these", imageFiles(6))
	var limitErr *errx.AttachmentLimitError
	require.True(t, errors.As(err, &limitErr))

	// Nothing reached the generator and no state was recorded.
	assert.Empty(t, gen.recorded())
	assert.Empty(t, a.Store().Transcript())
	assert.Empty(t, a.Store().History())
	assert.False(t, a.Store().GenerationInFlight())

	// The slot is free again for the corrected submission.
	require.NoError(t, a.Submit(context.Background(), "look at these", imageFiles(2)))
	a.Wait()
	require.NoError(t, a.LastError())
}

func TestStopCancelsInFlightGeneration(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](5)
	gen := &fakeGenerator{
		stream: func(context.Context, model.Request) (*schema.StreamReader[*schema.Message], error) {
			return sr, nil
		},
	}
	a := newTestAssistant(gen)

	require.NoError(t, a.Submit(context.Background(), "tell me everything", nil))

	sw.Send(&schema.Message{Role: schema.Assistant, Content: "Once"}, nil)
	sw.Send(&schema.Message{Role: schema.Assistant, Content: " upon"}, nil)
	require.Eventually(t, func() bool {
		transcript := a.Store().Transcript()
		return len(transcript) == 2 && transcript[1].Content == "Once upon"
	}, time.Second, time.Millisecond)

	a.Stop()
	sw.Send(&schema.Message{Role: schema.Assistant, Content: " a time"}, nil)
	sw.Close()
	a.Wait()

	// Cancellation is not a failure; the partial turn is kept.
	require.NoError(t, a.LastError())
	transcript := a.Store().Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, "Once upon", transcript[1].Content)
	assert.False(t, a.Store().GenerationInFlight())
}

func TestBootstrapIsGatedOnAuthentication(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()

	seed := store.New(backend, "profile")
	seed.AppendUserMessage(ctx, "cached turn", 0)
	seed.RecordSubmission(ctx, "cached turn")

	signedOut := newAssistant(fakeGate{authed: false}, &fakeGenerator{}, store.New(backend, "profile"))
	assert.ErrorIs(t, signedOut.Bootstrap(ctx), errx.ErrUnauthenticated)
	assert.Empty(t, signedOut.Store().Transcript())

	signedIn := newAssistant(fakeGate{authed: true}, &fakeGenerator{}, store.New(backend, "profile"))
	require.NoError(t, signedIn.Bootstrap(ctx))
	require.Len(t, signedIn.Store().Transcript(), 1)
	require.Len(t, signedIn.Store().History(), 1)
}

func TestLogoutClearsBothLogs(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()

	a := newAssistant(fakeGate{authed: true}, &fakeGenerator{
		stream: func(context.Context, model.Request) (*schema.StreamReader[*schema.Message], error) {
			return fragmentStream("bye"), nil
		},
	}, store.New(backend, "profile"))

	require.NoError(t, a.Submit(ctx, "remember me", nil))
	a.Wait()

	a.Logout(ctx)
	assert.Empty(t, a.Store().Transcript())
	assert.Empty(t, a.Store().History())

	// Durable storage is gone too: a fresh session restores nothing.
	fresh := store.New(backend, "profile")
	fresh.Bootstrap(ctx)
	assert.Empty(t, fresh.Transcript())
	assert.Empty(t, fresh.History())
}
