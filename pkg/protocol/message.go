// Package protocol defines the WebSocket message types exchanged between
// facepilot, the landmark daemon, and the input-synthesis daemon.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Landmark daemon → facepilot messages
	TypeLandmarks MessageType = "landmarks" // Landmark frame (or "no face")
	TypeProvider  MessageType = "provider"  // Provider status

	// facepilot → input daemon messages
	TypePointer MessageType = "pointer" // Relative pointer move
	TypeScroll  MessageType = "scroll"  // Scroll wheel
	TypeClick   MessageType = "click"   // Button press/release
	TypeKey     MessageType = "key"     // Key press
	TypeDrag    MessageType = "drag"    // Drag to absolute position

	// Input daemon → facepilot messages
	TypePointerPos MessageType = "pointer_pos" // Physical pointer position sample
	TypePhysical   MessageType = "physical"    // Physical (non-synthetic) click observed

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// OriginSynthetic marks events emitted by facepilot itself. A safety
// monitor watching real input uses it to filter out our own output.
const OriginSynthetic = "facepilot"

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Landmark daemon → facepilot
// =============================================================================

// LandmarksData carries one landmark frame. Face=false means the detector
// ran but found no face this frame; Regions is empty in that case.
type LandmarksData struct {
	FrameID uint64               `json:"frame_id,omitempty"`
	Face    bool                 `json:"face"`
	Regions map[string][][2]float64 `json:"regions,omitempty"`
}

// ProviderData carries landmark daemon status
type ProviderData struct {
	Connected bool    `json:"connected"`
	Model     string  `json:"model,omitempty"`
	FPS       float64 `json:"fps,omitempty"`
}

// =============================================================================
// facepilot → input daemon
// =============================================================================

// PointerData is a relative pointer move
type PointerData struct {
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Origin string  `json:"origin"`
}

// ScrollData is a scroll wheel event
type ScrollData struct {
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Origin string  `json:"origin"`
}

// ClickData is a button press or release
type ClickData struct {
	Button string `json:"button"` // "left", "right", "middle"
	Down   bool   `json:"down"`
	Origin string `json:"origin"`
}

// KeyData is a key press
type KeyData struct {
	Code      string   `json:"code"`
	Modifiers []string `json:"modifiers,omitempty"`
	Origin    string   `json:"origin"`
}

// DragData moves the pointer to an absolute position with a button held
type DragData struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button"`
	Origin string  `json:"origin"`
}

// =============================================================================
// Input daemon → facepilot
// =============================================================================

// PointerPosData is a physical pointer position sample, forwarded to the
// arbiter as drag motion while a drag toggle is held
type PointerPosData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PhysicalData reports a physical click the input daemon observed. The
// daemon filters out facepilot's own events by their origin marker
// before reporting.
type PhysicalData struct {
	Button string `json:"button"`
	Down   bool   `json:"down"`
}

// =============================================================================
// Bidirectional
// =============================================================================

// PingData is a health check request
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts,omitempty"`
}

// PongData is a health check response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
