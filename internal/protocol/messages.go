// Package protocol defines the JSON messages exchanged on the live
// voice websocket. The client sends speak requests and control
// actions; the server answers with audio events carrying base64 blobs.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeSpeakRequest  MessageType = "speak_request"
	TypeClientControl MessageType = "client_control"
	TypeAudioEvent    MessageType = "audio_event"
	TypeSystemEvent   MessageType = "system_event"
	TypeErrorEvent    MessageType = "error_event"
)

// Control actions the client may send.
const (
	ActionStop = "stop"
	ActionPing = "ping"
	ActionEnd  = "end"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// SpeakRequest asks the server to synthesize text and stream the audio
// back on this socket instead of playing it server-side.
type SpeakRequest struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
}

type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
}

// AudioEvent delivers one synthesized utterance.
type AudioEvent struct {
	Type        MessageType `json:"type"`
	SessionID   string      `json:"session_id"`
	Provider    string      `json:"provider"`
	MIME        string      `json:"mime"`
	AudioBase64 string      `json:"audio_base64"`
	CacheHit    bool        `json:"cache_hit"`
	Text        string      `json:"text"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail"`
}

// ParseClientMessage decodes and validates one client frame.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeSpeakRequest:
		var msg SpeakRequest
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Text == "" {
			return nil, errors.New("speak_request requires text")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		switch msg.Action {
		case ActionStop, ActionPing, ActionEnd:
		default:
			return nil, fmt.Errorf("unknown control action %q", msg.Action)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}
}
