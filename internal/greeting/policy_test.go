package greeting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/settings"
)

type recordingSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	entered chan struct{}
	release chan struct{}
}

func (s *recordingSpeaker) Speak(_ context.Context, text string) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()
}

func (s *recordingSpeaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}

func newTestPolicy(t *testing.T, speaker Speaker, playbackActive func() bool) *Policy {
	t.Helper()
	store := settings.NewInMemoryStore()
	p := NewPolicy(store, speaker, playbackActive, true, nil, zerolog.Nop())
	p.now = func() time.Time {
		return time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	}
	return p
}

func TestGreetOncePerTab(t *testing.T) {
	speaker := &recordingSpeaker{}
	p := newTestPolicy(t, speaker, nil)
	ctx := context.Background()

	if got := p.Greet(ctx, "tab-1"); got != OutcomeSpoken {
		t.Fatalf("first Greet() = %v, want %v", got, OutcomeSpoken)
	}
	if got := p.Greet(ctx, "tab-1"); got != OutcomeAlreadyGreeted {
		t.Fatalf("second Greet() = %v, want %v", got, OutcomeAlreadyGreeted)
	}
	if got := len(speaker.Spoken()); got != 1 {
		t.Fatalf("spoken %d greetings, want exactly 1", got)
	}
}

func TestGreetFirstAccessTodayFiresOnceAcrossTabs(t *testing.T) {
	speaker := &recordingSpeaker{}
	p := newTestPolicy(t, speaker, nil)
	ctx := context.Background()

	p.Greet(ctx, "tab-1")
	p.Greet(ctx, "tab-2")

	spoken := speaker.Spoken()
	if len(spoken) != 2 {
		t.Fatalf("spoken = %d, want 2", len(spoken))
	}
	if spoken[0] != "Que bom ter você de volta! Vamos cuidar das suas finanças hoje?" {
		t.Fatalf("first greeting = %q, want the first-access line", spoken[0])
	}
	if spoken[1] != "Bom dia" {
		t.Fatalf("second greeting = %q, want the morning salutation", spoken[1])
	}
	if p.IsFirstAccessToday(ctx) {
		t.Fatal("IsFirstAccessToday() still true after a greeting was spoken")
	}
}

func TestGreetVoiceDisabled(t *testing.T) {
	speaker := &recordingSpeaker{}
	p := newTestPolicy(t, speaker, nil)
	ctx := context.Background()

	if err := p.SetVoiceEnabled(ctx, false); err != nil {
		t.Fatalf("SetVoiceEnabled() error = %v", err)
	}
	if got := p.Greet(ctx, "tab-1"); got != OutcomeVoiceDisabled {
		t.Fatalf("Greet() = %v, want %v", got, OutcomeVoiceDisabled)
	}
	if len(speaker.Spoken()) != 0 {
		t.Fatal("disabled voice must not speak")
	}
}

func TestGreetDefersWhileOtherPlaybackActive(t *testing.T) {
	speaker := &recordingSpeaker{}
	busy := true
	p := newTestPolicy(t, speaker, func() bool { return busy })
	ctx := context.Background()

	if got := p.Greet(ctx, "tab-1"); got != OutcomeDeferred {
		t.Fatalf("Greet() during playback = %v, want %v", got, OutcomeDeferred)
	}
	if !p.ShouldGreet("tab-1") {
		t.Fatal("deferred tab must stay ungreeted")
	}

	busy = false
	if got := p.Greet(ctx, "tab-1"); got != OutcomeSpoken {
		t.Fatalf("retry Greet() = %v, want %v", got, OutcomeSpoken)
	}
}

func TestGreetInFlightGuard(t *testing.T) {
	speaker := &recordingSpeaker{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	p := newTestPolicy(t, speaker, nil)
	ctx := context.Background()

	done := make(chan Outcome, 1)
	go func() { done <- p.Greet(ctx, "tab-1") }()
	<-speaker.entered

	if got := p.Greet(ctx, "tab-1"); got != OutcomeAlreadyInFlight {
		t.Fatalf("concurrent Greet() = %v, want %v", got, OutcomeAlreadyInFlight)
	}

	close(speaker.release)
	if got := <-done; got != OutcomeSpoken {
		t.Fatalf("first Greet() = %v, want %v", got, OutcomeSpoken)
	}
}

func TestEnablingVoiceResetsGreetedTabs(t *testing.T) {
	speaker := &recordingSpeaker{}
	p := newTestPolicy(t, speaker, nil)
	ctx := context.Background()

	p.Greet(ctx, "tab-1")
	if p.ShouldGreet("tab-1") {
		t.Fatal("tab should be marked greeted")
	}

	if err := p.SetVoiceEnabled(ctx, true); err != nil {
		t.Fatalf("SetVoiceEnabled() error = %v", err)
	}
	if !p.ShouldGreet("tab-1") {
		t.Fatal("re-enabling voice must clear per-tab greeted flags")
	}
}
