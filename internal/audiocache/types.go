// Package audiocache persists synthesized audio blobs keyed by phrase id
// or normalized text, so the paid providers are never invoked twice for
// the same utterance.
package audiocache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cached audio not found")

// CachedAudio is one stored synthesis result. Entries are written once
// and only removed by an explicit Clear; there is no TTL or LRU policy.
type CachedAudio struct {
	Key      string    `json:"key"`
	Blob     []byte    `json:"-"`
	StoredAt time.Time `json:"stored_at"`
}

// Store is the durable phrase cache.
type Store interface {
	Get(ctx context.Context, key string) (CachedAudio, error)
	Put(ctx context.Context, key string, blob []byte) error
	Clear(ctx context.Context) error
	Close() error
}
