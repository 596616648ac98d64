package audiocache

import (
	"context"
	"sync"
	"time"
)

// Memo layers a process-local map over a durable Store so repeat
// lookups within one process avoid hitting the database. It mirrors the
// client-side split between the durable blob store and the in-memory
// URL cache for already-fetched audio.
type Memo struct {
	store Store

	mu   sync.RWMutex
	hot  map[string]CachedAudio
	hits func(outcome string)
}

// NewMemo wraps store. hits is an optional callback invoked with
// "hit", "memo_hit", or "miss" per lookup; nil disables it.
func NewMemo(store Store, hits func(outcome string)) *Memo {
	return &Memo{
		store: store,
		hot:   make(map[string]CachedAudio),
		hits:  hits,
	}
}

func (m *Memo) observe(outcome string) {
	if m.hits != nil {
		m.hits(outcome)
	}
}

func (m *Memo) Get(ctx context.Context, key string) (CachedAudio, error) {
	m.mu.RLock()
	entry, ok := m.hot[key]
	m.mu.RUnlock()
	if ok {
		m.observe("memo_hit")
		return entry, nil
	}

	entry, err := m.store.Get(ctx, key)
	if err != nil {
		if err == ErrNotFound {
			m.observe("miss")
		}
		return CachedAudio{}, err
	}
	m.observe("hit")

	m.mu.Lock()
	m.hot[key] = entry
	m.mu.Unlock()
	return entry, nil
}

func (m *Memo) Put(ctx context.Context, key string, blob []byte) error {
	if err := m.store.Put(ctx, key, blob); err != nil {
		return err
	}
	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.mu.Lock()
	m.hot[key] = CachedAudio{Key: key, Blob: stored, StoredAt: time.Now().UTC()}
	m.mu.Unlock()
	return nil
}

func (m *Memo) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	m.hot = make(map[string]CachedAudio)
	m.mu.Unlock()
	return nil
}

func (m *Memo) Close() error { return m.store.Close() }
