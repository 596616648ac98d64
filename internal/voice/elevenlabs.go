package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/reliability"
)

type ElevenLabsConfig struct {
	APIKeys      []string
	BaseURL      string
	VoiceID      string
	ModelID      string
	OutputFormat string
}

// ElevenLabsAdapter is the primary provider. It holds a rotating
// credential pool: each synthesis attempt takes the next key, and
// authorization or quota statuses burn through the pool until every
// key has been tried once for the request.
type ElevenLabsAdapter struct {
	cfg    ElevenLabsConfig
	pool   *KeyPool
	client *http.Client
	logger zerolog.Logger
}

func NewElevenLabsAdapter(cfg ElevenLabsConfig, client *http.Client, logger zerolog.Logger) *ElevenLabsAdapter {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if strings.TrimSpace(cfg.OutputFormat) == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ElevenLabsAdapter{
		cfg:    cfg,
		pool:   NewKeyPool(cfg.APIKeys),
		client: client,
		logger: logger.With().Str("provider", "elevenlabs").Logger(),
	}
}

func (a *ElevenLabsAdapter) Name() string { return "elevenlabs" }

func (a *ElevenLabsAdapter) Synthesize(ctx context.Context, text string) (Audio, error) {
	if a.pool.Size() == 0 {
		return Audio{}, ErrNotConfigured
	}

	var lastErr error
	for attempt := 0; attempt < a.pool.Size(); attempt++ {
		key, ok := a.pool.Next()
		if !ok {
			break
		}

		audio, status, err := a.request(ctx, key, text)
		if err == nil {
			return audio, nil
		}
		lastErr = err

		if status != 0 && reliability.IsKeyRotationStatus(status) {
			a.logger.Warn().Int("status", status).Int("attempt", attempt+1).Int("pool_size", a.pool.Size()).
				Msg("credential rejected, rotating to next key")
			continue
		}
		return Audio{}, err
	}

	return Audio{}, fmt.Errorf("%w: %v", ErrQuotaExhausted, lastErr)
}

// request performs one synthesis call with one credential. status is the
// HTTP status when the upstream answered, 0 otherwise.
func (a *ElevenLabsAdapter) request(ctx context.Context, key, text string) (Audio, int, error) {
	endpoint := strings.TrimRight(a.cfg.BaseURL, "/") +
		"/v1/text-to-speech/" + url.PathEscape(a.cfg.VoiceID) +
		"?output_format=" + url.QueryEscape(a.cfg.OutputFormat)

	payload, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": a.cfg.ModelID,
		"voice_settings": map[string]any{
			"stability":        0.42,
			"similarity_boost": 0.85,
		},
	})
	if err != nil {
		return Audio{}, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Audio{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", key)

	res, err := a.client.Do(req)
	if err != nil {
		return Audio{}, 0, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return Audio{}, res.StatusCode, fmt.Errorf("elevenlabs status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		return Audio{}, res.StatusCode, fmt.Errorf("read elevenlabs audio: %w", err)
	}
	if len(data) == 0 {
		return Audio{}, res.StatusCode, ErrEmptyAudio
	}

	mime := res.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/mpeg"
	}
	return Audio{Data: data, MIME: mime}, res.StatusCode, nil
}
