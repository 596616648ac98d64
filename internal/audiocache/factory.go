package audiocache

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed cache when configured, otherwise
// in-memory. The in-memory cache loses blobs on restart but keeps the
// pipeline fully functional.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
