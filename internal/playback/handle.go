package playback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// FuncHandle adapts a pair of functions into a Handle. Useful for tests
// and for delivery paths (like the websocket session) where "playback"
// means pushing bytes to a client.
type FuncHandle struct {
	PlayFn func(ctx context.Context) error
	StopFn func()
}

func (h *FuncHandle) Play(ctx context.Context) error {
	if h.PlayFn == nil {
		return nil
	}
	return h.PlayFn(ctx)
}

func (h *FuncHandle) Stop() {
	if h.StopFn != nil {
		h.StopFn()
	}
}

// playerCommands are tried in order when looking for a local audio
// player binary.
var playerCommands = [][]string{
	{"afplay"},
	{"mpg123", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"aplay", "-q"},
}

var errNoPlayer = errors.New("no local audio player found (tried afplay, mpg123, ffplay, aplay)")

// CommandHandle plays an audio blob through an external player process.
// Stop kills the process; the temp file is removed on both natural
// completion and forced stop.
type CommandHandle struct {
	blob []byte

	mu     sync.Mutex
	cancel context.CancelFunc
	done   bool
}

func NewCommandHandle(blob []byte) *CommandHandle {
	return &CommandHandle{blob: blob}
}

func (h *CommandHandle) Play(ctx context.Context) error {
	argv, err := lookupPlayer()
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "isavoice-*.audio")
	if err != nil {
		return fmt.Errorf("create playback temp file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(h.blob); err != nil {
		f.Close()
		return fmt.Errorf("write playback temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close playback temp file: %w", err)
	}

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

	cmd := exec.CommandContext(runCtx, argv[0], append(argv[1:], f.Name())...)
	err = cmd.Run()

	h.mu.Lock()
	h.done = true
	h.cancel = nil
	h.mu.Unlock()

	if runCtx.Err() != nil {
		// Forced stop is not a playback failure.
		return nil
	}
	if err != nil {
		return fmt.Errorf("player %s: %w", argv[0], err)
	}
	return nil
}

func (h *CommandHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = true
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func lookupPlayer() ([]string, error) {
	for _, argv := range playerCommands {
		if _, err := exec.LookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, errNoPlayer
}
