// Command isaspeak drives a running isavoice server from the terminal:
// it opens a tab session, streams speak requests over the websocket,
// reports per-utterance synthesis latency and cache hits, and can save
// the returned audio to disk.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inovafinance/isa-voice/internal/protocol"
)

type options struct {
	baseURL string
	texts   []string
	outDir  string
	repeat  int
	timeout time.Duration
	verbose bool
}

var defaultUtterances = []string{
	"Bom dia",
	"Seu saldo é R$ 1.234 reais",
	"Transação registrada com sucesso.",
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "isaspeak: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "isaspeak: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var cfg options
	var textsRaw string
	var timeoutMS int

	fs := flag.NewFlagSet("isaspeak", flag.ContinueOnError)
	fs.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:8080", "isavoice base URL")
	fs.StringVar(&textsRaw, "texts", "", "utterances separated by '|' (optional)")
	fs.StringVar(&cfg.outDir, "out-dir", "", "save returned audio files to this directory")
	fs.IntVar(&cfg.repeat, "repeat", 1, "times to send each utterance (repeats should hit the cache)")
	fs.IntVar(&timeoutMS, "timeout-ms", 30000, "per-utterance timeout in milliseconds")
	fs.BoolVar(&cfg.verbose, "verbose", true, "print progress")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	if cfg.baseURL == "" {
		return options{}, fmt.Errorf("base-url is required")
	}
	if cfg.repeat <= 0 {
		return options{}, fmt.Errorf("repeat must be > 0")
	}
	if timeoutMS < 1000 {
		timeoutMS = 1000
	}
	cfg.timeout = time.Duration(timeoutMS) * time.Millisecond

	cfg.texts = splitTexts(textsRaw)
	if len(cfg.texts) == 0 {
		cfg.texts = append([]string(nil), defaultUtterances...)
	}
	return cfg, nil
}

func splitTexts(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func run(cfg options) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	httpClient := &http.Client{Timeout: 45 * time.Second}
	sessionID, err := createSession(ctx, httpClient, cfg.baseURL)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer func() {
		_ = endSession(context.Background(), httpClient, cfg.baseURL, sessionID)
	}()

	wsURL, err := wsURLForSession(cfg.baseURL, sessionID)
	if err != nil {
		return fmt.Errorf("build ws URL: %w", err)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("open websocket: %w", err)
	}
	defer conn.Close()

	for round := 0; round < cfg.repeat; round++ {
		for i, text := range cfg.texts {
			started := time.Now()
			event, err := speakOnce(conn, sessionID, text, cfg.timeout)
			if err != nil {
				return fmt.Errorf("utterance %d: %w", i+1, err)
			}
			if cfg.verbose {
				fmt.Printf("isaspeak: %q provider=%s cache_hit=%v latency=%s bytes=%d\n",
					text, event.Provider, event.CacheHit, time.Since(started).Round(time.Millisecond), len(event.AudioBase64)/4*3)
			}
			if cfg.outDir != "" {
				if err := saveAudio(cfg.outDir, round, i, event); err != nil {
					return fmt.Errorf("save audio: %w", err)
				}
			}
		}
	}
	return nil
}

func speakOnce(conn *websocket.Conn, sessionID, text string, timeout time.Duration) (protocol.AudioEvent, error) {
	req := protocol.SpeakRequest{
		Type:      protocol.TypeSpeakRequest,
		SessionID: sessionID,
		Text:      text,
	}
	if err := conn.WriteJSON(req); err != nil {
		return protocol.AudioEvent{}, err
	}

	deadline := time.Now().Add(timeout)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			return protocol.AudioEvent{}, err
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		switch env.Type {
		case protocol.TypeAudioEvent:
			var event protocol.AudioEvent
			if err := json.Unmarshal(data, &event); err != nil {
				return protocol.AudioEvent{}, err
			}
			return event, nil
		case protocol.TypeErrorEvent:
			var event protocol.ErrorEvent
			_ = json.Unmarshal(data, &event)
			return protocol.AudioEvent{}, fmt.Errorf("server error %s: %s", event.Code, event.Detail)
		case protocol.TypeSystemEvent:
			var event protocol.SystemEvent
			_ = json.Unmarshal(data, &event)
			if event.Code == "nothing_to_speak" {
				return protocol.AudioEvent{}, fmt.Errorf("nothing to speak for %q", text)
			}
		}
	}
}

func saveAudio(dir string, round, idx int, event protocol.AudioEvent) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	blob, err := base64.StdEncoding.DecodeString(event.AudioBase64)
	if err != nil {
		return err
	}
	ext := ".mp3"
	if event.MIME == "audio/wav" {
		ext = ".wav"
	}
	name := fmt.Sprintf("utterance-%d-%d%s", round+1, idx+1, ext)
	return os.WriteFile(filepath.Join(dir, name), blob, 0o644)
}

func createSession(ctx context.Context, client *http.Client, baseURL string) (string, error) {
	payload := []byte(`{"label":"isaspeak"}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/sessions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.SessionID == "" {
		return "", fmt.Errorf("response missing session_id")
	}
	return parsed.SessionID, nil
}

func endSession(ctx context.Context, client *http.Client, baseURL, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/sessions/"+sessionID+"/end", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func wsURLForSession(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/voice/ws"
	q := u.Query()
	q.Set("session_id", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
