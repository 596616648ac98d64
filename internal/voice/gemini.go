package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/audio"
	"github.com/inovafinance/isa-voice/internal/reliability"
)

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	ModelID string
	Voice   string
}

// GeminiAdapter is the secondary provider: a single-credential call to
// the Gemini TTS model. The upstream returns base64 raw PCM16 inside a
// JSON envelope; the adapter wraps it in a WAV container so the rest of
// the pipeline handles one kind of playable blob. A missing audio field
// is a failure value, never a panic.
type GeminiAdapter struct {
	cfg    GeminiConfig
	client *http.Client
	logger zerolog.Logger
}

// Gemini TTS emits PCM16 mono at this rate.
const geminiPCMSampleRate = 24000

func NewGeminiAdapter(cfg GeminiConfig, client *http.Client, logger zerolog.Logger) *GeminiAdapter {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "gemini-2.5-flash-preview-tts"
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = "Kore"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiAdapter{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("provider", "gemini").Logger(),
	}
}

func (a *GeminiAdapter) Name() string { return "gemini" }

// post issues the synthesis request, retrying transient upstream
// statuses a couple of times with capped backoff before giving the
// orchestrator its failure value.
func (a *GeminiAdapter) post(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := reliability.ExponentialBackoff(attempt, 200*time.Millisecond, time.Second)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := a.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("gemini request: %w", err)
		}
		body, _ := io.ReadAll(io.LimitReader(res.Body, 32<<20))
		res.Body.Close()

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			return body, nil
		}
		lastErr = fmt.Errorf("gemini status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
		if !reliability.IsRetryableHTTPStatus(res.StatusCode) {
			return nil, lastErr
		}
		a.logger.Debug().Int("status", res.StatusCode).Int("attempt", attempt+1).Msg("transient gemini failure")
	}
	return nil, lastErr
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData struct {
					MIMEType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (a *GeminiAdapter) Synthesize(ctx context.Context, text string) (Audio, error) {
	if strings.TrimSpace(a.cfg.APIKey) == "" {
		return Audio{}, ErrNotConfigured
	}

	endpoint := strings.TrimRight(a.cfg.BaseURL, "/") +
		"/v1beta/models/" + url.PathEscape(a.cfg.ModelID) + ":generateContent?key=" + url.QueryEscape(a.cfg.APIKey)

	payload, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": text}}},
		},
		"generationConfig": map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]any{"voiceName": a.cfg.Voice},
				},
			},
		},
	})
	if err != nil {
		return Audio{}, err
	}

	body, err := a.post(ctx, endpoint, payload)
	if err != nil {
		return Audio{}, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Audio{}, fmt.Errorf("gemini invalid json: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Audio{}, fmt.Errorf("gemini response missing candidates: %w", ErrEmptyAudio)
	}

	inline := parsed.Candidates[0].Content.Parts[0].InlineData
	if strings.TrimSpace(inline.Data) == "" {
		return Audio{}, fmt.Errorf("gemini response missing audio data: %w", ErrEmptyAudio)
	}

	pcm, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return Audio{}, fmt.Errorf("gemini audio decode: %w", err)
	}
	if len(pcm) == 0 {
		return Audio{}, ErrEmptyAudio
	}

	wav, err := audio.EncodeWAVPCM16LE(pcm, geminiPCMSampleRate)
	if err != nil {
		return Audio{}, fmt.Errorf("wrap gemini pcm: %w", err)
	}
	return Audio{Data: wav, MIME: "audio/wav"}, nil
}
