// Package actuator implements the input-synthesis actuator contract over
// a websocket to an external input daemon. Every event is tagged with the
// synthetic-origin marker so a safety monitor can tell facepilot's output
// apart from real user input.
package actuator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/facepilot/facepilot/internal/log"
	"github.com/facepilot/facepilot/pkg/protocol"
)

// Client is a websocket actuator. It implements action.Actuator.
//
// The input daemon also acts as the safety monitor: it watches physical
// input, filters out events carrying our origin marker, and reports real
// pointer positions and clicks back over the same connection.
type Client struct {
	url string

	wsMu sync.Mutex
	ws   *websocket.Conn

	closed bool

	// OnPointerPos receives physical pointer position samples. Optional.
	OnPointerPos func(x, y float64)

	// OnPhysicalClick receives physical (non-synthetic) click reports.
	// Optional.
	OnPhysicalClick func(button string, down bool)

	// OnDisconnect fires once when the connection is lost for any reason
	// other than Close. Optional.
	OnDisconnect func()
}

// NewClient creates an actuator client for the given input daemon URL
func NewClient(url string) *Client {
	return &Client{url: url}
}

// Connect dials the input daemon
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("input daemon connect failed: %w", err)
	}

	c.wsMu.Lock()
	c.ws = ws
	c.wsMu.Unlock()

	go c.readLoop(ws)

	log.Info("input daemon connected", "url", c.url)
	return nil
}

// readLoop receives monitor reports from the input daemon
func (c *Client) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.wsMu.Lock()
			closed := c.closed
			c.wsMu.Unlock()
			if !closed {
				log.Warn("input daemon stream ended", "err", err)
				if c.OnDisconnect != nil {
					c.OnDisconnect()
				}
			}
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Warn("bad input daemon message", "err", err)
			continue
		}

		switch msg.Type {
		case protocol.TypePointerPos:
			pos, err := msg.GetPointerPosData()
			if err == nil && c.OnPointerPos != nil {
				c.OnPointerPos(pos.X, pos.Y)
			}

		case protocol.TypePhysical:
			click, err := msg.GetPhysicalData()
			if err == nil && c.OnPhysicalClick != nil {
				c.OnPhysicalClick(click.Button, click.Down)
			}
		}
	}
}

// Close shuts down the connection
func (c *Client) Close() error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	if c.closed || c.ws == nil {
		return nil
	}
	c.closed = true
	return c.ws.Close()
}

// MoveRelative moves the pointer by a pixel delta
func (c *Client) MoveRelative(dx, dy float64) error {
	msg, err := protocol.NewPointerMessage(dx, dy)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Scroll scrolls by the given wheel delta
func (c *Client) Scroll(dx, dy float64) error {
	msg, err := protocol.NewScrollMessage(dx, dy)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Click presses or releases a button
func (c *Client) Click(button string, down bool) error {
	msg, err := protocol.NewClickMessage(button, down)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Key presses a key with optional modifiers
func (c *Client) Key(code string, modifiers []string) error {
	msg, err := protocol.NewKeyMessage(code, modifiers)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Drag moves the pointer to an absolute position with a button held
func (c *Client) Drag(x, y float64, button string) error {
	msg, err := protocol.NewDragMessage(x, y, button)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// send writes one message. Events are fire-and-forget: a failed write is
// reported but never retried.
func (c *Client) send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	if c.ws == nil || c.closed {
		return fmt.Errorf("input daemon not connected")
	}

	c.ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("input daemon write failed: %w", err)
	}
	return nil
}
