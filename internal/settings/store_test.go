package settings

import (
	"context"
	"errors"
	"testing"
)

func TestInMemorySetGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if _, err := s.Get(ctx, KeyVoiceEnabled); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, KeyVoiceEnabled, "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, KeyVoiceEnabled)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "true" {
		t.Fatalf("value = %q, want %q", got, "true")
	}

	// Last write wins.
	if err := s.Set(ctx, KeyVoiceEnabled, "false"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err = s.Get(ctx, KeyVoiceEnabled)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "false" {
		t.Fatalf("value = %q, want %q", got, "false")
	}
}

func TestNewStoreDefaultsToInMemory(t *testing.T) {
	s, err := NewStore(context.Background(), "  ")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, ok := s.(*InMemoryStore); !ok {
		t.Fatalf("NewStore(\"\") = %T, want *InMemoryStore", s)
	}
}
