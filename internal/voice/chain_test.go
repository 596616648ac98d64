package voice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestChainFirstSuccessWins(t *testing.T) {
	primary := &MockSynthesizer{MockName: "primary", Audio: Audio{Data: []byte("p"), MIME: "audio/mpeg"}}
	secondary := &MockSynthesizer{MockName: "secondary", Audio: Audio{Data: []byte("s"), MIME: "audio/wav"}}
	chain := NewChain([]Synthesizer{primary, secondary}, nil, zerolog.Nop())

	got, provider, err := chain.Synthesize(context.Background(), "texto")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if provider != "primary" || string(got.Data) != "p" {
		t.Fatalf("got provider %q data %q, want primary/p", provider, got.Data)
	}
	if len(secondary.Calls()) != 0 {
		t.Fatalf("secondary should not be invoked on primary success")
	}
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	primary := &MockSynthesizer{MockName: "primary", Err: errors.New("upstream down")}
	secondary := &MockSynthesizer{MockName: "secondary", Audio: Audio{Data: []byte("s")}}
	chain := NewChain([]Synthesizer{primary, secondary}, nil, zerolog.Nop())

	got, provider, err := chain.Synthesize(context.Background(), "texto")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if provider != "secondary" || string(got.Data) != "s" {
		t.Fatalf("got provider %q data %q, want secondary/s", provider, got.Data)
	}
}

func TestChainTotalExhaustion(t *testing.T) {
	a := &MockSynthesizer{MockName: "a", Err: errors.New("boom a")}
	b := &MockSynthesizer{MockName: "b", Err: errors.New("boom b")}
	chain := NewChain([]Synthesizer{a, b}, nil, zerolog.Nop())

	_, _, err := chain.Synthesize(context.Background(), "texto")
	if err == nil {
		t.Fatalf("Synthesize() should fail when every provider fails")
	}
}

// A 3-key pool answering 429 for every key must fall through to the
// secondary adapter without the quota errors surfacing.
func TestChainQuotaExhaustedPrimaryFallsToSecondary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	primary := NewElevenLabsAdapter(ElevenLabsConfig{
		APIKeys: []string{"k1", "k2", "k3"},
		BaseURL: srv.URL,
		VoiceID: "voz",
	}, srv.Client(), zerolog.Nop())
	secondary := &MockSynthesizer{MockName: "gemini", Audio: Audio{Data: []byte("ok"), MIME: "audio/wav"}}

	chain := NewChain([]Synthesizer{primary, secondary}, nil, zerolog.Nop())
	got, provider, err := chain.Synthesize(context.Background(), "Bom dia")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if provider != "gemini" || string(got.Data) != "ok" {
		t.Fatalf("got provider %q data %q, want gemini/ok", provider, got.Data)
	}
}

func TestChainProviders(t *testing.T) {
	chain := NewChain([]Synthesizer{
		&MockSynthesizer{MockName: "elevenlabs"},
		&MockSynthesizer{MockName: "gemini"},
	}, nil, zerolog.Nop())
	got := chain.Providers()
	if len(got) != 2 || got[0] != "elevenlabs" || got[1] != "gemini" {
		t.Fatalf("Providers() = %v", got)
	}
}
