package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/config"
	"github.com/inovafinance/isa-voice/internal/voice"
)

// resolveAdapters instantiates the network providers in the configured
// priority order. Reordering or removing a provider is a config change;
// the native fallback never appears here because it is always the
// terminal step inside the Speaker.
func resolveAdapters(cfg config.Config, logger zerolog.Logger) ([]voice.Synthesizer, *voice.GeminiAdapter, error) {
	client := &http.Client{Timeout: cfg.SynthesisTimeout + 5*time.Second}

	var gemini *voice.GeminiAdapter
	adapters := make([]voice.Synthesizer, 0, len(cfg.ProviderOrder))
	for _, name := range cfg.ProviderOrder {
		switch name {
		case "elevenlabs":
			adapters = append(adapters, voice.NewElevenLabsAdapter(voice.ElevenLabsConfig{
				APIKeys:      cfg.ElevenLabsAPIKeys,
				BaseURL:      cfg.ElevenLabsBaseURL,
				VoiceID:      cfg.ElevenLabsVoiceID,
				ModelID:      cfg.ElevenLabsModelID,
				OutputFormat: "mp3_44100_128",
			}, client, logger))
		case "gemini":
			gemini = voice.NewGeminiAdapter(voice.GeminiConfig{
				APIKey:  cfg.GeminiAPIKey,
				BaseURL: cfg.GeminiBaseURL,
				ModelID: cfg.GeminiModelID,
				Voice:   cfg.GeminiVoice,
			}, client, logger)
			adapters = append(adapters, gemini)
		default:
			return nil, nil, fmt.Errorf("unknown provider %q in TTS_PROVIDER_ORDER", name)
		}
	}
	return adapters, gemini, nil
}
