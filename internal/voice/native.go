package voice

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/playback"
)

// nativeCommands are probed in order when no override is configured.
var nativeCommands = []string{"say", "espeak-ng", "espeak"}

// NativeAdapter invokes the operating system's built-in speech
// synthesis. It is the unconditional last resort: no network, no
// credentials, and no blob to cache since the platform plays the audio
// itself.
type NativeAdapter struct {
	command string
	logger  zerolog.Logger
}

func NewNativeAdapter(commandOverride string, logger zerolog.Logger) *NativeAdapter {
	return &NativeAdapter{
		command: strings.TrimSpace(commandOverride),
		logger:  logger.With().Str("provider", "native").Logger(),
	}
}

func (a *NativeAdapter) Name() string { return "native" }

// Available reports whether a local speech binary can be found.
func (a *NativeAdapter) Available() bool {
	_, err := a.binary()
	return err == nil
}

func (a *NativeAdapter) binary() (string, error) {
	if a.command != "" {
		return exec.LookPath(a.command)
	}
	for _, candidate := range nativeCommands {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no native speech binary found (tried %s)", strings.Join(nativeCommands, ", "))
}

// SpeakHandle returns a playback handle that speaks text through the
// local binary when played. Stop kills the speech process.
func (a *NativeAdapter) SpeakHandle(text string) (playback.Handle, error) {
	bin, err := a.binary()
	if err != nil {
		return nil, err
	}
	return &nativeHandle{bin: bin, text: text}, nil
}

type nativeHandle struct {
	bin  string
	text string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   bool
}

func (h *nativeHandle) Play(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		cancel()
		return nil
	}
	h.cancel = cancel
	h.mu.Unlock()
	defer cancel()

	err := exec.CommandContext(runCtx, h.bin, h.text).Run()

	h.mu.Lock()
	h.done = true
	h.cancel = nil
	h.mu.Unlock()

	if runCtx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("native speech %s: %w", h.bin, err)
	}
	return nil
}

func (h *nativeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = true
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}
