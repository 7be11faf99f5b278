// ABOUTME: Tests for feed message encoding
// ABOUTME: Verifies envelope decoding of typed payloads
package protocol

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeDecode(t *testing.T) {
	data, err := json.Marshal(Message{
		Type:    TypeSessionHello,
		Payload: SessionHello{SessionID: "s1", Keys: 7, WindowMs: 500},
	})
	if err != nil {
		t.Fatal(err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("failed to unmarshal envelope: %v", err)
	}
	if env.Type != TypeSessionHello {
		t.Errorf("expected %s, got %s", TypeSessionHello, env.Type)
	}

	var hello SessionHello
	if err := env.Decode(&hello); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if hello.SessionID != "s1" || hello.Keys != 7 || hello.WindowMs != 500 {
		t.Errorf("unexpected hello: %+v", hello)
	}
}

func TestEnvelopeDecodeError(t *testing.T) {
	env := Envelope{Type: TypeFrame, Payload: json.RawMessage(`"not an object"`)}

	var hello SessionHello
	if err := env.Decode(&hello); err == nil {
		t.Error("expected decode error")
	}
}
