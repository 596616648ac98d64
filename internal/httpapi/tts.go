package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/inovafinance/isa-voice/internal/audio"
	"github.com/inovafinance/isa-voice/internal/speech"
	"github.com/inovafinance/isa-voice/internal/voice"
)

type speakRequest struct {
	Text          string `json:"text"`
	SaveToStorage bool   `json:"saveToStorage,omitempty"`
	FileName      string `json:"fileName,omitempty"`
}

// handleSpeak synthesizes text and returns the audio. With
// saveToStorage the blob is written to disk instead and the response
// carries its URL.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "missing_text", "text is required")
		return
	}

	result, err := s.speaker.Synthesize(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, voice.ErrNotConfigured) {
			respondError(w, http.StatusInternalServerError, "missing_credentials", "no synthesis provider is configured")
			return
		}
		s.logger.Warn().Err(err).Msg("synthesis failed")
		respondError(w, http.StatusInternalServerError, "synthesis_failed", "all synthesis providers failed")
		return
	}
	if len(result.Audio.Data) == 0 {
		// Text normalized away to nothing. Nothing to speak is not an error.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if req.SaveToStorage && s.files != nil {
		audioURL, err := s.files.Save(req.FileName, result.Audio.Data, result.Audio.MIME)
		if err != nil {
			s.logger.Error().Err(err).Msg("audio storage write failed")
			respondError(w, http.StatusInternalServerError, "storage_failed", "could not persist audio")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"audioUrl": audioURL,
			"provider": result.Provider,
			"cacheHit": result.CacheHit,
		})
		return
	}

	writeAudio(w, result)
}

type playRequest struct {
	Text string `json:"text"`
}

// handlePlay speaks on the host's own audio output instead of
// returning the blob. Fire-and-forget: failures degrade to silence.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "missing_text", "text is required")
		return
	}

	s.speaker.SpeakAsync(context.WithoutCancel(r.Context()), req.Text)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// handleGeminiTTS drives the secondary provider alone. Callers use it
// as an optional enhancement, so every failure mode answers 204 and
// lets the client fall back silently; only absent input is a 400.
func (s *Server) handleGeminiTTS(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "missing_text", "text is required")
		return
	}
	if s.gemini == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	normalized := speech.NormalizeCurrency(req.Text)
	if normalized == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	synthesized, err := s.gemini.Synthesize(r.Context(), normalized)
	if err != nil {
		s.logger.Debug().Err(err).Msg("gemini-only synthesis failed, answering 204")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeAudio(w, voice.Result{Audio: synthesized, Provider: s.gemini.Name()})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.speaker.ClearCache(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("cache clear failed")
		respondError(w, http.StatusInternalServerError, "cache_clear_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleListPhrases(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"phrases": speech.Catalog()})
}

func (s *Server) handleGetVoiceEnabled(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"enabled": s.greeter.VoiceEnabled(r.Context())})
}

type voiceToggleRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleSetVoiceEnabled(w http.ResponseWriter, r *http.Request) {
	var req voiceToggleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := s.greeter.SetVoiceEnabled(r.Context(), req.Enabled); err != nil {
		respondError(w, http.StatusInternalServerError, "settings_write_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

type greetingRequest struct {
	TabID string `json:"tab_id"`
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	var req greetingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.TabID) == "" {
		respondError(w, http.StatusBadRequest, "missing_tab_id", "tab_id is required")
		return
	}

	outcome := s.greeter.Greet(r.Context(), req.TabID)
	respondJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}

func writeAudio(w http.ResponseWriter, result voice.Result) {
	mime := result.Audio.MIME
	if mime == "" {
		mime = audio.DetectMIME(result.Audio.Data)
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-TTS-Provider", result.Provider)
	if result.CacheHit {
		w.Header().Set("X-Cache", "hit")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Audio.Data)
}
