package voice

import (
	"strings"
	"sync/atomic"
)

// KeyPool is an ordered pool of credentials with a round-robin cursor.
// The cursor advances on every Next call regardless of whether the
// previous attempt succeeded, spreading quota across keys. The pool is
// owned by the adapter instance that uses it, never global.
type KeyPool struct {
	keys   []string
	cursor atomic.Uint64
}

func NewKeyPool(keys []string) *KeyPool {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return &KeyPool{keys: cleaned}
}

// Size returns the number of credentials in the pool.
func (p *KeyPool) Size() int { return len(p.keys) }

// Next returns the next credential in round-robin order. ok is false
// when the pool is empty.
func (p *KeyPool) Next() (key string, ok bool) {
	if len(p.keys) == 0 {
		return "", false
	}
	n := p.cursor.Add(1) - 1
	return p.keys[n%uint64(len(p.keys))], true
}
