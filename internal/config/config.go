package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config contains all runtime settings for the ISA voice service.
type Config struct {
	BindAddr         string        `envconfig:"APP_BIND_ADDR" default:":8080"`
	PublicBaseURL    string        `envconfig:"APP_PUBLIC_BASE_URL" default:""`
	ShutdownTimeout  time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"15s"`
	MetricsNamespace string        `envconfig:"APP_METRICS_NAMESPACE" default:"isavoice"`
	AllowAnyOrigin   bool          `envconfig:"APP_ALLOW_ANY_ORIGIN" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	// Comma-separated priority order for network TTS providers. The native
	// speech fallback is always the terminal step and is not listed here.
	ProviderOrder []string `envconfig:"TTS_PROVIDER_ORDER" default:"elevenlabs,gemini"`

	// ElevenLabsAPIKeys is the rotating credential pool for the primary
	// provider. A single env var carries the whole pool as a comma-separated
	// list.
	ElevenLabsAPIKeys []string `envconfig:"ELEVENLABS_API_KEYS" default:""`
	ElevenLabsBaseURL string   `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io"`
	ElevenLabsVoiceID string   `envconfig:"ELEVENLABS_VOICE_ID" default:"EXAVITQu4vr4xnSDxMaL"`
	ElevenLabsModelID string   `envconfig:"ELEVENLABS_MODEL_ID" default:"eleven_multilingual_v2"`

	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	GeminiModelID string `envconfig:"GEMINI_TTS_MODEL_ID" default:"gemini-2.5-flash-preview-tts"`
	GeminiVoice   string `envconfig:"GEMINI_TTS_VOICE" default:"Kore"`

	// NativeSpeechCommand overrides the auto-detected local speech binary
	// (say, espeak-ng, espeak). Empty means autodetect.
	NativeSpeechCommand string `envconfig:"NATIVE_SPEECH_COMMAND" default:""`

	SynthesisTimeout time.Duration `envconfig:"TTS_SYNTHESIS_TIMEOUT" default:"30s"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	AudioDir string `envconfig:"AUDIO_STORAGE_DIR" default:"audio"`

	GTFSArchivePath string `envconfig:"GTFS_ARCHIVE_PATH" default:""`

	SessionInactivityTimeout time.Duration `envconfig:"APP_SESSION_INACTIVITY_TIMEOUT" default:"2m"`
	VoiceDefaultEnabled      bool          `envconfig:"VOICE_DEFAULT_ENABLED" default:"true"`
}

// Load reads environment variables into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env config: %w", err)
	}

	cfg.ElevenLabsAPIKeys = compactList(cfg.ElevenLabsAPIKeys)
	cfg.ProviderOrder = compactList(cfg.ProviderOrder)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.SessionInactivityTimeout < 5*time.Second {
		return fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if c.SynthesisTimeout <= 0 {
		return fmt.Errorf("TTS_SYNTHESIS_TIMEOUT must be positive")
	}
	if len(c.ProviderOrder) == 0 {
		return fmt.Errorf("TTS_PROVIDER_ORDER must name at least one provider")
	}
	for _, name := range c.ProviderOrder {
		switch name {
		case "elevenlabs", "gemini":
		default:
			return fmt.Errorf("TTS_PROVIDER_ORDER contains unknown provider %q (expected elevenlabs|gemini)", name)
		}
	}
	if strings.TrimSpace(c.AudioDir) == "" {
		return fmt.Errorf("AUDIO_STORAGE_DIR must not be empty")
	}
	return nil
}

// compactList trims entries and drops empty ones, so values like
// "a, b,,c" and an unset variable both behave sensibly.
func compactList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
