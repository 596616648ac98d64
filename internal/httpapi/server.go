// Package httpapi exposes the voice pipeline over HTTP: synthesis
// endpoints, greeting and voice-flag control, transit lookups, tab
// sessions, and a websocket that streams synthesized audio.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/config"
	"github.com/inovafinance/isa-voice/internal/greeting"
	"github.com/inovafinance/isa-voice/internal/observability"
	"github.com/inovafinance/isa-voice/internal/session"
	"github.com/inovafinance/isa-voice/internal/storage"
	"github.com/inovafinance/isa-voice/internal/transit"
	"github.com/inovafinance/isa-voice/internal/voice"
)

type Server struct {
	cfg      config.Config
	speaker  *voice.Speaker
	gemini   voice.Synthesizer
	greeter  *greeting.Policy
	sessions *session.Manager
	transit  *transit.Dataset
	files    *storage.FileStore
	metrics  *observability.Metrics
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

// New assembles the server. gemini may be nil when the secondary
// provider is unconfigured; its dedicated endpoint then answers 204.
func New(
	cfg config.Config,
	speaker *voice.Speaker,
	gemini voice.Synthesizer,
	greeter *greeting.Policy,
	sessions *session.Manager,
	transitData *transit.Dataset,
	files *storage.FileStore,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	return &Server{
		cfg:      cfg,
		speaker:  speaker,
		gemini:   gemini,
		greeter:  greeter,
		sessions: sessions,
		transit:  transitData,
		files:    files,
		metrics:  metrics,
		logger:   logger.With().Str("component", "httpapi").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser connections unless explicitly opened
				// up; other sites must not be able to drive the user's voice.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	if s.files != nil {
		fileServer := http.StripPrefix(storage.URLPrefix, http.FileServer(http.Dir(s.files.Dir())))
		r.Get(storage.URLPrefix+"*", fileServer.ServeHTTP)
	}

	r.Post("/v1/tts/speak", s.handleSpeak)
	r.Post("/v1/tts/play", s.handlePlay)
	r.Post("/v1/tts/gemini", s.handleGeminiTTS)
	r.Post("/v1/tts/cache/clear", s.handleClearCache)
	r.Get("/v1/phrases", s.handleListPhrases)

	r.Get("/v1/voice", s.handleGetVoiceEnabled)
	r.Put("/v1/voice", s.handleSetVoiceEnabled)
	r.Post("/v1/greeting", s.handleGreeting)

	r.Post("/v1/sessions", s.handleCreateSession)
	r.Post("/v1/sessions/{id}/touch", s.handleTouchSession)
	r.Post("/v1/sessions/{id}/end", s.handleEndSession)
	r.Get("/v1/voice/ws", s.handleVoiceWS)

	r.Get("/v1/transit/stops/nearby", s.handleNearbyStops)
	r.Get("/v1/transit/stops/{id}/routes", s.handleStopRoutes)
	r.Get("/v1/transit/stops/{id}/departures", s.handleStopDepartures)

	return r
}

// corsMiddleware answers preflights and stamps CORS headers on every
// response, matching the permissive serverless-function contract the
// web client expects.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": s.speaker.Providers(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
