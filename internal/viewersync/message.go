// Package viewersync implements the message protocol between the hosting
// application and the embedded viewing surface. The two sides may live in
// isolated execution contexts, so they share nothing and talk only through
// encoded messages over a Conn; synchronous call semantics are never assumed
// across the boundary.
package viewersync

import (
	"github.com/goccy/go-json"

	"github.com/formlens/formlens/internal/overlay"
)

// Message types. The type field is the protocol discriminator; anything
// without a known type is dropped silently on receipt.
const (
	TypeApplyOverlays = "apply-overlays"
	TypeClearOverlays = "clear-overlays"
	TypeOverlayReady  = "overlay-ready"
)

// Message is the protocol envelope. Overlays is only set for apply-overlays.
type Message struct {
	Type     string           `json:"type"`
	Overlays []overlay.Marker `json:"overlays,omitempty"`
}

// ApplyOverlays builds a full-replace overlay instruction.
func ApplyOverlays(markers []overlay.Marker) Message {
	return Message{Type: TypeApplyOverlays, Overlays: markers}
}

// ClearOverlays builds an instruction emptying the overlay set.
func ClearOverlays() Message {
	return Message{Type: TypeClearOverlays}
}

// OverlayReady is sent by the viewer once its render engine is initialized.
// The host treats it as "the viewer lost all state, re-send everything".
func OverlayReady() Message {
	return Message{Type: TypeOverlayReady}
}

// Encode serializes a message for the wire.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a wire message. The second return is false for malformed
// payloads or unknown types; per protocol that is a silent no-op, never an
// error surfaced to the user.
func Decode(data []byte) (Message, bool) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, false
	}
	switch m.Type {
	case TypeApplyOverlays, TypeClearOverlays, TypeOverlayReady:
		return m, true
	default:
		return Message{}, false
	}
}
