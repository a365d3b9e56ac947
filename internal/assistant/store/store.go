// Package store owns the durable session state: the transcript and the
// submitted-query history. All mutation funnels through the Store so the
// single-writer invariant holds across the submission path and the relay.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	logx "github.com/genius-ai/assistant/pkg/logger"

	"github.com/genius-ai/assistant/internal/assistant/model"
)

// timeNow is a seam for tests.
var timeNow = time.Now

// Log selects which durable log an operation targets.
type Log int

const (
	LogTranscript Log = iota
	LogHistory
	LogBoth
)

// Store is the single owner of the session. A nil backend means durable
// storage is unavailable (non-interactive context): every load and write
// is silently skipped and the session lives in memory only.
type Store struct {
	mu      sync.Mutex
	session *model.Session
	backend model.StorageBackend

	messagesKey string
	historyKey  string
}

// New creates a store scoped to one profile. Pass a nil backend to run
// in-memory only.
func New(backend model.StorageBackend, profile string) *Store {
	return &Store{
		session:     model.NewSession(),
		backend:     backend,
		messagesKey: storageKey(profile, "messages"),
		historyKey:  storageKey(profile, "history"),
	}
}

func storageKey(profile, name string) string {
	return fmt.Sprintf("assistant:%s:%s", profile, name)
}

// Bootstrap loads both logs from durable storage. The loads are
// independent: a corrupted value empties that log only and is logged,
// never surfaced to the user.
func (s *Store) Bootstrap(ctx context.Context) {
	if s.backend == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var transcript []model.Message
	if loadJSON(ctx, s.backend, s.messagesKey, &transcript) {
		s.session.Transcript = transcript
	}
	var history []model.HistoryEntry
	if loadJSON(ctx, s.backend, s.historyKey, &history) {
		s.session.History = history
	}
}

// loadJSON reports whether dst was populated from storage. Missing keys
// and parse failures both leave dst alone; parse failures are logged.
func loadJSON(ctx context.Context, backend model.StorageBackend, key string, dst any) bool {
	raw, ok, err := backend.Get(ctx, key)
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to load durable log")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("corrupted durable log, starting empty")
		return false
	}
	return true
}

// RecordSubmission appends one history entry for a non-empty submission.
// Empty (after trimming) text is a no-op. The entry is never rolled back,
// whatever becomes of the generation that follows.
func (s *Store) RecordSubmission(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.History = append(s.session.History, model.HistoryEntry{
		Text:      text,
		Timestamp: timeNow(),
	})
	s.persistHistory(ctx)
}

// AppendUserMessage appends the user's turn to the transcript.
func (s *Store) AppendUserMessage(ctx context.Context, text string, attachmentCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Transcript = append(s.session.Transcript, model.NewUserMessage(text, attachmentCount))
	s.persistTranscript(ctx)
}

// TryBeginGeneration attempts to claim the single generation slot.
// It reports false, touching nothing, when a generation is already in
// flight.
func (s *Store) TryBeginGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.GenerationInFlight {
		return false
	}
	s.session.GenerationInFlight = true
	return true
}

// BeginAssistantMessage appends the empty assistant turn the relay will
// fill. Called on the first fragment.
func (s *Store) BeginAssistantMessage(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Transcript = append(s.session.Transcript, model.NewAssistantMessage())
	s.persistTranscript(ctx)
}

// AppendToAssistantMessage appends one fragment, in arrival order, to the
// in-flight assistant turn.
func (s *Store) AppendToAssistantMessage(ctx context.Context, fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := len(s.session.Transcript) - 1
	if last < 0 || s.session.Transcript[last].Role != model.RoleAssistant {
		logx.Warn().Msg("fragment arrived with no assistant turn open, dropping")
		return
	}
	s.session.Transcript[last].Content += fragment
	s.persistTranscript(ctx)
}

// FinalizeAssistantMessage releases the generation slot. The assistant
// turn, partial or complete, is immutable from here on. Safe to call when
// no assistant turn was ever opened (failure before the first fragment).
func (s *Store) FinalizeAssistantMessage(ctx context.Context) {
	// The final persist must still run when the generation was cancelled.
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.GenerationInFlight = false
	s.persistTranscript(ctx)
}

// GenerationInFlight reports whether the single generation slot is taken.
func (s *Store) GenerationInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.GenerationInFlight
}

// SetAuthToken caches the gate's opaque credential on the session.
func (s *Store) SetAuthToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.AuthToken = token
}

// Transcript returns a copy of the transcript for presentation.
func (s *Store) Transcript() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.session.Transcript))
	copy(out, s.session.Transcript)
	return out
}

// History returns a copy of the submitted-query history.
func (s *Store) History() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.HistoryEntry, len(s.session.History))
	copy(out, s.session.History)
	return out
}

// Clear erases durable storage for the selected log(s) and resets the
// in-memory state to empty. On logout the gate clears both.
func (s *Store) Clear(ctx context.Context, which Log) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if which == LogTranscript || which == LogBoth {
		s.session.Transcript = []model.Message{}
		s.deleteKey(ctx, s.messagesKey)
	}
	if which == LogHistory || which == LogBoth {
		s.session.History = []model.HistoryEntry{}
		s.deleteKey(ctx, s.historyKey)
	}
	if which == LogBoth {
		s.session.AuthToken = ""
	}
}

// persistTranscript writes the full transcript, replacing prior durable
// content. Callers hold the lock.
func (s *Store) persistTranscript(ctx context.Context) {
	s.persistJSON(ctx, s.messagesKey, s.session.Transcript)
}

func (s *Store) persistHistory(ctx context.Context) {
	s.persistJSON(ctx, s.historyKey, s.session.History)
}

func (s *Store) persistJSON(ctx context.Context, key string, v any) {
	if s.backend == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to marshal durable log")
		return
	}
	if err := s.backend.Set(ctx, key, string(b)); err != nil {
		// Persistence faults never block the conversation.
		logx.Error().Err(err).Str("key", key).Msg("failed to persist durable log")
	}
}

func (s *Store) deleteKey(ctx context.Context, key string) {
	if s.backend == nil {
		return
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to clear durable log")
	}
}
