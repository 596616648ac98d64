package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if got := cfg.ProviderOrder; len(got) != 2 || got[0] != "elevenlabs" || got[1] != "gemini" {
		t.Fatalf("ProviderOrder = %v, want [elevenlabs gemini]", got)
	}
	if len(cfg.ElevenLabsAPIKeys) != 0 {
		t.Fatalf("ElevenLabsAPIKeys = %v, want empty", cfg.ElevenLabsAPIKeys)
	}
}

func TestLoadKeyPoolFromEnv(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEYS", " k1 , k2,,k3 ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"k1", "k2", "k3"}
	if len(cfg.ElevenLabsAPIKeys) != len(want) {
		t.Fatalf("keys = %v, want %v", cfg.ElevenLabsAPIKeys, want)
	}
	for i, k := range want {
		if cfg.ElevenLabsAPIKeys[i] != k {
			t.Fatalf("keys[%d] = %q, want %q", i, cfg.ElevenLabsAPIKeys[i], k)
		}
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("TTS_PROVIDER_ORDER", "elevenlabs,polly")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() should reject unknown provider in TTS_PROVIDER_ORDER")
	}
}

func TestLoadRejectsShortInactivityTimeout(t *testing.T) {
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "1s")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() should reject sub-5s inactivity timeout")
	}
}
