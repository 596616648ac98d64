package httpapi

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/inovafinance/isa-voice/internal/protocol"
	"github.com/inovafinance/isa-voice/internal/session"
)

type createSessionRequest struct {
	Label string `json:"label"`
}

type createSessionResponse struct {
	SessionID       string         `json:"session_id"`
	Label           string         `json:"label,omitempty"`
	Status          session.Status `json:"status"`
	StartedAt       time.Time      `json:"started_at"`
	InactivityTTLMS int64          `json:"inactivity_ttl_ms"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && err != errEmptyBody {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sess := s.sessions.Create(strings.TrimSpace(req.Label))
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))

	respondJSON(w, http.StatusCreated, createSessionResponse{
		SessionID:       sess.ID,
		Label:           sess.Label,
		Status:          sess.Status,
		StartedAt:       sess.StartedAt,
		InactivityTTLMS: s.sessions.InactivityTimeout().Milliseconds(),
	})
}

func (s *Server) handleTouchSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Touch(id); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.greeter.ForgetTab(sess.ID)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	respondJSON(w, http.StatusOK, sess)
}

// handleVoiceWS streams synthesized audio over a websocket. Each
// speak_request frame answers with one audio_event carrying the blob
// base64-encoded; the client plays it locally.
func (s *Server) handleVoiceWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	if _, err := s.sessions.Get(sessionID); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan any, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	send := func(msg any) {
		select {
		case outbound <- msg:
		default:
			// Writes stay single-threaded; drop when the queue is saturated.
			s.logger.Warn().Str("session", sessionID).Msg("outbound queue full, dropping frame")
		}
	}

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = s.sessions.Touch(sessionID)

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			send(protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "invalid_client_message",
				Detail:    err.Error(),
			})
			continue
		}

		switch msg := parsed.(type) {
		case protocol.SpeakRequest:
			s.streamSpeech(ctx, sessionID, msg.Text, send)
		case protocol.ClientControl:
			switch msg.Action {
			case protocol.ActionStop:
				s.speaker.Playback().StopAll()
				send(protocol.SystemEvent{Type: protocol.TypeSystemEvent, SessionID: sessionID, Code: "stopped"})
			case protocol.ActionPing:
				send(protocol.SystemEvent{Type: protocol.TypeSystemEvent, SessionID: sessionID, Code: "pong"})
			case protocol.ActionEnd:
				break readLoop
			}
		}
	}

	cancel()
	<-writerDone
}

func (s *Server) streamSpeech(ctx context.Context, sessionID, text string, send func(any)) {
	result, err := s.speaker.Synthesize(ctx, text)
	if err != nil {
		send(protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			SessionID: sessionID,
			Code:      "synthesis_failed",
			Detail:    err.Error(),
		})
		return
	}
	if len(result.Audio.Data) == 0 {
		send(protocol.SystemEvent{Type: protocol.TypeSystemEvent, SessionID: sessionID, Code: "nothing_to_speak"})
		return
	}
	send(protocol.AudioEvent{
		Type:        protocol.TypeAudioEvent,
		SessionID:   sessionID,
		Provider:    result.Provider,
		MIME:        result.Audio.MIME,
		AudioBase64: base64.StdEncoding.EncodeToString(result.Audio.Data),
		CacheHit:    result.CacheHit,
		Text:        text,
	})
}
