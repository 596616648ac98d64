package voice

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/audio"
	"github.com/inovafinance/isa-voice/internal/audiocache"
	"github.com/inovafinance/isa-voice/internal/playback"
	"github.com/inovafinance/isa-voice/internal/speech"
)

// Result describes one synthesis, for callers that deliver the audio
// themselves (HTTP handlers, the websocket session).
type Result struct {
	Audio    Audio
	Provider string
	CacheKey string
	CacheHit bool
}

// Speaker is the fallback orchestrator. Every path through Speak
// terminates in either audible output or a logged no-op; it never
// raises to its caller.
type Speaker struct {
	chain    *Chain
	native   *NativeAdapter
	cache    *audiocache.Memo
	playback *playback.Manager
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewSpeaker(
	chain *Chain,
	native *NativeAdapter,
	cache *audiocache.Memo,
	pb *playback.Manager,
	timeout time.Duration,
	logger zerolog.Logger,
) *Speaker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Speaker{
		chain:    chain,
		native:   native,
		cache:    cache,
		playback: pb,
		timeout:  timeout,
		logger:   logger.With().Str("component", "speaker").Logger(),
	}
}

// cacheKey prefers the catalog phrase id so canned lines share one slot
// regardless of how the text reached us; dynamic sentences key by their
// normalized text.
func cacheKey(normalized string) string {
	if p, ok := speech.LookupByText(normalized); ok {
		return p.ID
	}
	return normalized
}

// lookup consults the phrase cache. The bool reports a hit.
func (s *Speaker) lookup(ctx context.Context, key string) (Result, bool) {
	entry, err := s.cache.Get(ctx, key)
	if err == nil {
		return Result{
			Audio:    Audio{Data: entry.Blob, MIME: audio.DetectMIME(entry.Blob)},
			Provider: "cache",
			CacheKey: key,
			CacheHit: true,
		}, true
	}
	if !errors.Is(err, audiocache.ErrNotFound) {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, synthesizing anyway")
	}
	return Result{}, false
}

// synthesizeAndCache runs the provider chain and stores the result.
// Synthesis is deliberately detached from the caller's cancellation: a
// pre-empted speak request still runs to completion so its result lands
// in the cache.
func (s *Speaker) synthesizeAndCache(ctx context.Context, normalized, key string) (Result, error) {
	synthCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	synthesized, provider, err := s.chain.Synthesize(synthCtx, normalized)
	if err != nil {
		return Result{}, err
	}

	if putErr := s.cache.Put(synthCtx, key, synthesized.Data); putErr != nil {
		s.logger.Warn().Err(putErr).Str("key", key).Msg("cache write failed")
	}

	return Result{Audio: synthesized, Provider: provider, CacheKey: key, CacheHit: false}, nil
}

// Synthesize normalizes text and produces audio, consulting and
// populating the phrase cache. It does not play anything. Empty
// normalized text returns a zero Result with no error: nothing to speak.
func (s *Speaker) Synthesize(ctx context.Context, rawText string) (Result, error) {
	normalized := speech.NormalizeCurrency(rawText)
	if normalized == "" {
		return Result{}, nil
	}
	key := cacheKey(normalized)

	if result, ok := s.lookup(ctx, key); ok {
		return result, nil
	}
	return s.synthesizeAndCache(ctx, normalized, key)
}

// Speak runs the full pipeline: normalize, cache, fallback chain,
// exclusive playback, native last resort. All failures are logged,
// never returned; silence is the only user-visible symptom.
func (s *Speaker) Speak(ctx context.Context, rawText string) {
	normalized := speech.NormalizeCurrency(rawText)
	if normalized == "" {
		return
	}
	key := cacheKey(normalized)

	if result, ok := s.lookup(ctx, key); ok {
		s.play(ctx, result, normalized)
		return
	}

	// Cache miss: silence the current output before spending time on the
	// network so stale speech does not keep playing under the new request.
	s.playback.StopAll()

	result, err := s.synthesizeAndCache(ctx, normalized, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("all network providers failed, using native speech")
		s.speakNative(ctx, normalized)
		return
	}
	s.play(ctx, result, normalized)
}

// SpeakAsync is the fire-and-forget form used by UI-facing paths.
func (s *Speaker) SpeakAsync(ctx context.Context, rawText string) {
	go s.Speak(ctx, rawText)
}

func (s *Speaker) play(ctx context.Context, result Result, normalized string) {
	handle := playback.NewCommandHandle(result.Audio.Data)
	if err := s.playback.PlayExclusive(ctx, handle); err != nil {
		s.logger.Warn().Err(err).Str("provider", result.Provider).Msg("local playback failed, trying native speech")
		s.speakNative(ctx, normalized)
	}
}

func (s *Speaker) speakNative(ctx context.Context, normalized string) {
	handle, err := s.native.SpeakHandle(normalized)
	if err != nil {
		s.logger.Error().Err(err).Msg("native speech unavailable, staying silent")
		return
	}
	if err := s.playback.PlayExclusive(ctx, handle); err != nil {
		s.logger.Error().Err(err).Msg("native speech failed, staying silent")
	}
}

// ClearCache drops every cached phrase.
func (s *Speaker) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// Playback exposes the exclusivity manager for callers that deliver
// audio through their own handles.
func (s *Speaker) Playback() *playback.Manager { return s.playback }

// Providers returns the active network provider order.
func (s *Speaker) Providers() []string { return s.chain.Providers() }
