// Package playback enforces the single-output rule: at most one audio
// or speech stream is audible at any instant, process-wide.
package playback

import (
	"context"
	"sync"
)

// Handle is one playable unit. Play blocks until playback finishes or
// fails; Stop halts it early and releases its resources. Stop must be
// safe to call at any time, including after completion.
type Handle interface {
	Play(ctx context.Context) error
	Stop()
}

// Manager serializes audible output. Starting a new handle always stops
// the previous one first; two outputs never overlap.
type Manager struct {
	mu     sync.Mutex
	active Handle

	onPreempt func()
}

// NewManager builds a Manager. onPreempt is invoked each time a new
// playback stops an active one; nil disables it.
func NewManager(onPreempt func()) *Manager {
	return &Manager{onPreempt: onPreempt}
}

// PlayExclusive stops any active handle, makes h the active one, and
// blocks until h finishes. The returned error is h's playback error.
func (m *Manager) PlayExclusive(ctx context.Context, h Handle) error {
	m.mu.Lock()
	if m.active != nil {
		m.active.Stop()
		if m.onPreempt != nil {
			m.onPreempt()
		}
	}
	m.active = h
	m.mu.Unlock()

	err := h.Play(ctx)

	m.mu.Lock()
	if m.active == h {
		m.active = nil
	}
	m.mu.Unlock()
	return err
}

// StopAll immediately halts and releases any in-flight handle.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.active.Stop()
		m.active = nil
	}
}

// Active reports whether a handle is currently playing.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil
}
