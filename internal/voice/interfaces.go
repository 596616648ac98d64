// Package voice implements the TTS provider adapters, the fallback
// chain across them, and the speak orchestrator.
package voice

import (
	"context"
	"errors"
)

// Audio is a synthesized, playable blob.
type Audio struct {
	Data []byte
	MIME string
}

// Synthesizer is the uniform capability every network TTS vendor is
// wrapped in: text in, playable audio or a classified failure out.
// Failures are ordinary error values the chain swallows; adapters never
// panic on expected upstream conditions.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string) (Audio, error)
}

var (
	// ErrNotConfigured means the adapter has no usable credentials and
	// should be skipped without counting as an upstream failure.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrQuotaExhausted means every credential in the pool was rejected
	// with an authorization or quota status.
	ErrQuotaExhausted = errors.New("all provider credentials exhausted")

	// ErrEmptyAudio means the provider answered success but the payload
	// carried no audio.
	ErrEmptyAudio = errors.New("provider returned empty audio payload")
)
