package voice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/observability"
)

// Chain tries an ordered list of synthesizers and returns the first
// success. Adding, removing, or reordering providers is a data change.
type Chain struct {
	adapters []Synthesizer
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

func NewChain(adapters []Synthesizer, metrics *observability.Metrics, logger zerolog.Logger) *Chain {
	return &Chain{
		adapters: adapters,
		metrics:  metrics,
		logger:   logger.With().Str("component", "tts_chain").Logger(),
	}
}

// Providers returns the configured priority order by name.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.adapters))
	for _, a := range c.adapters {
		names = append(names, a.Name())
	}
	return names
}

// Synthesize walks the chain in priority order. Provider failures are
// logged and swallowed; only total exhaustion surfaces, as a joined
// error naming every attempt.
func (c *Chain) Synthesize(ctx context.Context, text string) (Audio, string, error) {
	var failures []error
	for _, adapter := range c.adapters {
		start := time.Now()
		audio, err := adapter.Synthesize(ctx, text)
		if err == nil {
			if c.metrics != nil {
				c.metrics.ProviderAttempts.WithLabelValues(adapter.Name(), "success").Inc()
				c.metrics.ObserveSynthesisLatency(adapter.Name(), time.Since(start))
			}
			return audio, adapter.Name(), nil
		}

		outcome := "failure"
		if errors.Is(err, ErrNotConfigured) {
			outcome = "not_configured"
		}
		if c.metrics != nil {
			c.metrics.ProviderAttempts.WithLabelValues(adapter.Name(), outcome).Inc()
		}
		if !errors.Is(err, ErrNotConfigured) {
			c.logger.Warn().Err(err).Str("adapter", adapter.Name()).Msg("provider failed, falling through")
		}
		failures = append(failures, fmt.Errorf("%s: %w", adapter.Name(), err))
	}
	return Audio{}, "", fmt.Errorf("all providers failed: %w", errors.Join(failures...))
}
