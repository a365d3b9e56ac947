package store

import (
	"context"
	"sync"

	"github.com/genius-ai/assistant/internal/assistant/model"
)

// MemoryBackend is a map-backed storage backend for tests and for
// profiles that want persistence across clears within one process but
// not across restarts.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}

var _ model.StorageBackend = (*MemoryBackend)(nil)
