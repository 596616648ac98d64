package protocol

import (
	"errors"
	"testing"
)

func TestParseSpeakRequest(t *testing.T) {
	raw := []byte(`{"type":"speak_request","session_id":"s1","text":"Bom dia"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	req, ok := msg.(SpeakRequest)
	if !ok {
		t.Fatalf("message type = %T, want SpeakRequest", msg)
	}
	if req.Text != "Bom dia" || req.SessionID != "s1" {
		t.Fatalf("parsed = %+v", req)
	}
}

func TestParseSpeakRequestRequiresText(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"speak_request","session_id":"s1"}`)); err == nil {
		t.Fatal("expected error for speak_request without text")
	}
}

func TestParseClientControl(t *testing.T) {
	for _, action := range []string{ActionStop, ActionPing, ActionEnd} {
		raw := []byte(`{"type":"client_control","session_id":"s1","action":"` + action + `"}`)
		msg, err := ParseClientMessage(raw)
		if err != nil {
			t.Fatalf("action %q: error = %v", action, err)
		}
		if _, ok := msg.(ClientControl); !ok {
			t.Fatalf("action %q: message type = %T", action, msg)
		}
	}
}

func TestParseClientControlUnknownAction(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"client_control","session_id":"s1","action":"dance"}`)); err == nil {
		t.Fatal("expected error for unknown control action")
	}
}

func TestParseUnsupportedType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"telemetry"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
