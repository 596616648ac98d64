// Package greeting decides when the assistant speaks an unprompted
// greeting. Two rules stack: each tab is greeted at most once per
// session, and the warmer "first access" line is spoken at most once
// per calendar day across all tabs.
package greeting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/settings"
	"github.com/inovafinance/isa-voice/internal/speech"
)

// Outcome reports what a Greet call did, so callers and tests can
// distinguish "spoke" from the various reasons for staying quiet.
type Outcome string

const (
	OutcomeSpoken          Outcome = "spoken"
	OutcomeVoiceDisabled   Outcome = "voice_disabled"
	OutcomeAlreadyGreeted  Outcome = "already_greeted"
	OutcomeAlreadyInFlight Outcome = "in_flight"
	OutcomeDeferred        Outcome = "deferred"
)

// Speaker is the one capability the policy needs from the voice stack.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// Policy holds the consolidated greeting state: the volatile per-tab
// greeted set, the in-flight guard, and a handle to the persistent
// per-day and voice-enabled flags.
type Policy struct {
	mu       sync.Mutex
	greeted  map[string]struct{}
	inflight map[string]struct{}

	settings       settings.Store
	speaker        Speaker
	playbackActive func() bool
	defaultEnabled bool
	now            func() time.Time
	onSpoken       func()
	logger         zerolog.Logger
}

// NewPolicy builds a policy. playbackActive reports whether any audio
// is currently audible; a nil func means "never busy". onSpoken is an
// optional counter hook.
func NewPolicy(
	store settings.Store,
	speaker Speaker,
	playbackActive func() bool,
	defaultEnabled bool,
	onSpoken func(),
	logger zerolog.Logger,
) *Policy {
	if playbackActive == nil {
		playbackActive = func() bool { return false }
	}
	return &Policy{
		greeted:        make(map[string]struct{}),
		inflight:       make(map[string]struct{}),
		settings:       store,
		speaker:        speaker,
		playbackActive: playbackActive,
		defaultEnabled: defaultEnabled,
		now:            time.Now,
		onSpoken:       onSpoken,
		logger:         logger.With().Str("component", "greeting").Logger(),
	}
}

// ShouldGreet reports whether tabID has not been greeted this session.
func (p *Policy) ShouldGreet(tabID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, done := p.greeted[tabID]
	return !done
}

// MarkGreeted records that tabID received its session greeting.
func (p *Policy) MarkGreeted(tabID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.greeted[tabID] = struct{}{}
}

// ForgetTab clears a tab's greeted flag, used when its session ends.
func (p *Policy) ForgetTab(tabID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.greeted, tabID)
	delete(p.inflight, tabID)
}

// IsFirstAccessToday reports whether no greeting has been spoken on the
// current calendar date. Store errors count as first access so a broken
// settings backend degrades to greeting, not to silence.
func (p *Policy) IsFirstAccessToday(ctx context.Context) bool {
	last, err := p.settings.Get(ctx, settings.KeyGreetingLastDate)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			p.logger.Warn().Err(err).Msg("greeting date read failed")
		}
		return true
	}
	return last != p.today()
}

// MarkAccessedToday stamps the current calendar date.
func (p *Policy) MarkAccessedToday(ctx context.Context) error {
	return p.settings.Set(ctx, settings.KeyGreetingLastDate, p.today())
}

// VoiceEnabled reads the persistent voice flag, falling back to the
// configured default when it was never set.
func (p *Policy) VoiceEnabled(ctx context.Context) bool {
	v, err := p.settings.Get(ctx, settings.KeyVoiceEnabled)
	if err != nil {
		return p.defaultEnabled
	}
	return v == "true"
}

// SetVoiceEnabled persists the flag. Turning voice on clears every
// per-tab greeted flag so greetings resume on next page mount.
func (p *Policy) SetVoiceEnabled(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	if err := p.settings.Set(ctx, settings.KeyVoiceEnabled, value); err != nil {
		return err
	}
	if enabled {
		p.mu.Lock()
		p.greeted = make(map[string]struct{})
		p.mu.Unlock()
	}
	return nil
}

// Greet runs the page-mount flow for tabID: voice enabled, no greeting
// already in flight for the tab, tab not yet greeted this session, no
// other playback audible. A busy output defers rather than pre-empts;
// the tab stays ungreeted and a later mount retries.
func (p *Policy) Greet(ctx context.Context, tabID string) Outcome {
	if !p.VoiceEnabled(ctx) {
		return OutcomeVoiceDisabled
	}

	p.mu.Lock()
	if _, busy := p.inflight[tabID]; busy {
		p.mu.Unlock()
		return OutcomeAlreadyInFlight
	}
	if _, done := p.greeted[tabID]; done {
		p.mu.Unlock()
		return OutcomeAlreadyGreeted
	}
	p.inflight[tabID] = struct{}{}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.inflight, tabID)
		p.mu.Unlock()
	}()

	if p.playbackActive() {
		p.logger.Debug().Str("tab", tabID).Msg("playback active, deferring greeting")
		return OutcomeDeferred
	}

	firstToday := p.IsFirstAccessToday(ctx)
	text := p.greetingText(firstToday)

	p.MarkGreeted(tabID)
	if firstToday {
		if err := p.MarkAccessedToday(ctx); err != nil {
			p.logger.Warn().Err(err).Msg("greeting date write failed")
		}
	}

	p.speaker.Speak(ctx, text)
	if p.onSpoken != nil {
		p.onSpoken()
	}
	p.logger.Info().Str("tab", tabID).Bool("first_today", firstToday).Msg("greeting spoken")
	return OutcomeSpoken
}

// greetingText picks the catalog line: the warm first-access line once
// per day, otherwise a time-of-day salutation.
func (p *Policy) greetingText(firstToday bool) string {
	if firstToday {
		if phrase, ok := speech.LookupByID("greeting.first_today"); ok {
			return phrase.Text
		}
	}
	id := "greeting.boa_noite"
	switch h := p.now().Hour(); {
	case h >= 5 && h < 12:
		id = "greeting.bom_dia"
	case h >= 12 && h < 18:
		id = "greeting.boa_tarde"
	}
	if phrase, ok := speech.LookupByID(id); ok {
		return phrase.Text
	}
	return "Olá"
}

func (p *Policy) today() string {
	return p.now().UTC().Format("2006-01-02")
}
