package main

import (
	"testing"
	"time"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if cfg.baseURL != "http://127.0.0.1:8080" {
		t.Fatalf("baseURL = %q", cfg.baseURL)
	}
	if len(cfg.texts) != len(defaultUtterances) {
		t.Fatalf("texts = %d, want defaults", len(cfg.texts))
	}
	if cfg.timeout != 30*time.Second {
		t.Fatalf("timeout = %v, want 30s", cfg.timeout)
	}
}

func TestParseFlagsSplitsTexts(t *testing.T) {
	cfg, err := parseFlags([]string{"-texts", "Bom dia | | Boa noite "})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if len(cfg.texts) != 2 || cfg.texts[0] != "Bom dia" || cfg.texts[1] != "Boa noite" {
		t.Fatalf("texts = %v", cfg.texts)
	}
}

func TestParseFlagsRejectsBadRepeat(t *testing.T) {
	if _, err := parseFlags([]string{"-repeat", "0"}); err == nil {
		t.Fatal("expected error for repeat=0")
	}
}

func TestWSURLForSession(t *testing.T) {
	got, err := wsURLForSession("http://localhost:8080", "abc")
	if err != nil {
		t.Fatalf("wsURLForSession() error = %v", err)
	}
	want := "ws://localhost:8080/v1/voice/ws?session_id=abc"
	if got != want {
		t.Fatalf("url = %q, want %q", got, want)
	}

	if _, err := wsURLForSession("ftp://x", "abc"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
