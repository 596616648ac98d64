// Package settings is a small last-write-wins key-value store for the
// voice feature's persistent flags: whether voice output is enabled and
// the last calendar date a first-access greeting was spoken.
package settings

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("setting not found")

const (
	KeyVoiceEnabled     = "voice_enabled"
	KeyGreetingLastDate = "greeting_last_date"
)

// Store persists string settings. Writes overwrite unconditionally.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise
// in-memory.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
