package audiocache

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps cached audio for the process lifetime only.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]CachedAudio
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]CachedAudio)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (CachedAudio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return CachedAudio{}, ErrNotFound
	}
	blob := make([]byte, len(entry.Blob))
	copy(blob, entry.Blob)
	entry.Blob = blob
	return entry, nil
}

func (s *InMemoryStore) Put(_ context.Context, key string, blob []byte) error {
	stored := make([]byte, len(blob))
	copy(stored, blob)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = CachedAudio{Key: key, Blob: stored, StoredAt: time.Now().UTC()}
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]CachedAudio)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
