package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewLandmarksMessage creates a landmark frame message
func NewLandmarksMessage(frameID uint64, face bool, regions map[string][][2]float64) (*Message, error) {
	return NewMessage(TypeLandmarks, LandmarksData{
		FrameID: frameID,
		Face:    face,
		Regions: regions,
	})
}

// NewPointerMessage creates a relative pointer move, tagged synthetic
func NewPointerMessage(dx, dy float64) (*Message, error) {
	return NewMessage(TypePointer, PointerData{DX: dx, DY: dy, Origin: OriginSynthetic})
}

// NewScrollMessage creates a scroll message, tagged synthetic
func NewScrollMessage(dx, dy float64) (*Message, error) {
	return NewMessage(TypeScroll, ScrollData{DX: dx, DY: dy, Origin: OriginSynthetic})
}

// NewClickMessage creates a click message, tagged synthetic
func NewClickMessage(button string, down bool) (*Message, error) {
	return NewMessage(TypeClick, ClickData{Button: button, Down: down, Origin: OriginSynthetic})
}

// NewKeyMessage creates a key press message, tagged synthetic
func NewKeyMessage(code string, modifiers []string) (*Message, error) {
	return NewMessage(TypeKey, KeyData{Code: code, Modifiers: modifiers, Origin: OriginSynthetic})
}

// NewDragMessage creates a drag message, tagged synthetic
func NewDragMessage(x, y float64, button string) (*Message, error) {
	return NewMessage(TypeDrag, DragData{X: x, Y: y, Button: button, Origin: OriginSynthetic})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetLandmarksData extracts landmark frame data from a message
func (m *Message) GetLandmarksData() (*LandmarksData, error) {
	var data LandmarksData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetProviderData extracts provider status from a message
func (m *Message) GetProviderData() (*ProviderData, error) {
	var data ProviderData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPointerData extracts pointer data from a message
func (m *Message) GetPointerData() (*PointerData, error) {
	var data PointerData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetScrollData extracts scroll data from a message
func (m *Message) GetScrollData() (*ScrollData, error) {
	var data ScrollData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetClickData extracts click data from a message
func (m *Message) GetClickData() (*ClickData, error) {
	var data ClickData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetKeyData extracts key data from a message
func (m *Message) GetKeyData() (*KeyData, error) {
	var data KeyData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetDragData extracts drag data from a message
func (m *Message) GetDragData() (*DragData, error) {
	var data DragData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPointerPosData extracts a pointer position sample from a message
func (m *Message) GetPointerPosData() (*PointerPosData, error) {
	var data PointerPosData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPhysicalData extracts a physical click report from a message
func (m *Message) GetPhysicalData() (*PhysicalData, error) {
	var data PhysicalData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
