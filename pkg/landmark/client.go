package landmark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/facepilot/facepilot/internal/log"
	"github.com/facepilot/facepilot/pkg/protocol"
)

// Client receives landmark frames from the landmark daemon over a websocket.
// It implements Provider.
type Client struct {
	url string

	ws     *websocket.Conn
	frames chan Frame

	mu     sync.Mutex
	closed bool

	// OnWire receives every raw landmark payload before conversion.
	// Used for session recording. Optional; set before Connect.
	OnWire func(protocol.LandmarksData)
}

// NewClient creates a landmark client for the given daemon URL
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		frames: make(chan Frame, 4),
	}
}

// Connect dials the landmark daemon and starts the read loop
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("landmark daemon connect failed: %w", err)
	}
	c.ws = ws

	go c.readLoop()

	log.Info("landmark daemon connected", "url", c.url)
	return nil
}

// Frames returns the channel of incoming landmark frames.
// The channel is closed when the connection ends.
func (c *Client) Frames() <-chan Frame {
	return c.frames
}

// Close shuts down the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.ws.Close()
}

func (c *Client) readLoop() {
	defer close(c.frames)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				log.Warn("landmark stream ended", "err", err)
			}
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Warn("bad landmark message", "err", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeLandmarks:
			lm, err := msg.GetLandmarksData()
			if err != nil {
				log.Warn("bad landmark payload", "err", err)
				continue
			}
			if c.OnWire != nil {
				c.OnWire(*lm)
			}
			frame := FrameFromWire(lm)

			// Drop the oldest frame rather than block the daemon
			select {
			case c.frames <- frame:
			default:
				select {
				case <-c.frames:
				default:
				}
				c.frames <- frame
			}

		case protocol.TypePing:
			ping, err := msg.GetPingData()
			if err != nil {
				continue
			}
			pong, err := protocol.NewPongMessage(ping.ID, msg.Timestamp, time.Now().UnixMilli())
			if err != nil {
				continue
			}
			if data, err := pong.Bytes(); err == nil {
				c.ws.WriteMessage(websocket.TextMessage, data)
			}

		case protocol.TypeProvider:
			status, err := msg.GetProviderData()
			if err == nil {
				log.Debug("provider status", "model", status.Model, "fps", status.FPS)
			}
		}
	}
}

// FrameFromWire converts a wire landmark payload into a Frame.
// A payload with Face=false yields a frame with no regions.
func FrameFromWire(lm *protocol.LandmarksData) Frame {
	frame := Frame{FrameID: lm.FrameID}
	if !lm.Face || len(lm.Regions) == 0 {
		return frame
	}

	frame.Regions = make(map[Region][]Point, len(lm.Regions))
	for name, raw := range lm.Regions {
		pts := make([]Point, len(raw))
		for i, xy := range raw {
			pts[i] = Point{X: xy[0], Y: xy[1]}
		}
		frame.Regions[Region(name)] = pts
	}
	return frame
}
