package voice

import (
	"context"
	"sync"
)

// MockSynthesizer is a scripted adapter for tests.
type MockSynthesizer struct {
	MockName string
	Audio    Audio
	Err      error

	mu    sync.Mutex
	calls []string
}

func (m *MockSynthesizer) Name() string {
	if m.MockName == "" {
		return "mock"
	}
	return m.MockName
}

func (m *MockSynthesizer) Synthesize(_ context.Context, text string) (Audio, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()
	if m.Err != nil {
		return Audio{}, m.Err
	}
	return m.Audio, nil
}

// Calls returns the texts synthesized so far.
func (m *MockSynthesizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
