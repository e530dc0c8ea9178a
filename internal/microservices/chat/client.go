package chat

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Individual client connection handler

const ( // ping pong(2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time write a message to the peer
	PongWait       = 60 * time.Second    // max time to wait for pong from peer => no pong = no connection
	PingPeriod     = (PongWait * 9) / 10 // send ping before pong wait expires, 10% slack for network jitter
	MaxMessageSize = 4096                // maximum inbound frame size from peer
)

type Client struct {
	ID       string          // unique connection ID
	Identity Identity        // resolved once at connect time by the registry
	Conn     *websocket.Conn // WebSocket connection
	Send     chan []byte     // channel for outbound messages
	session  *SessionManager // reference to the session manager event loop
	limiter  *rate.Limiter   // rate limiter for inbound messages
	rooms    map[string]bool // rooms this connection is subscribed to; touched only on the event loop
	logger   *slog.Logger
}

// NewClient wires a freshly upgraded connection to the session manager.
func NewClient(identity Identity, conn *websocket.Conn, session *SessionManager, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Client{
		ID:       uuid.NewString(),
		Identity: identity,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		session:  session,
		limiter:  rate.NewLimiter(rate.Limit(10), 20), // 10 msgs/sec with burst of 20
		rooms:    make(map[string]bool),
		logger:   slog.Default(),
	}
}

// ReadPump reads frames off the wire, validates them at the boundary
// and hands typed events to the session loop. It exits on any read
// error and always reports the disconnect so presence is updated even
// when the client never sent leave-room.
func (c *Client) ReadPump() {
	defer func() {
		c.session.Dispatch(disconnectEvent{client: c})
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("client_read_error",
					"client_id", c.ID,
					"error", err.Error(),
				)
			}
			return
		}

		// check rate limit
		if !c.limiter.Allow() {
			c.logger.Warn("rate_limit_exceeded",
				"client_id", c.ID,
			)
			c.sendFrame(EventError, map[string]string{"error": "rate limit exceeded"})
			continue
		}

		event, err := parseClientFrame(c, raw)
		if err != nil {
			c.logger.Warn("invalid_frame_received",
				"client_id", c.ID,
				"error", err.Error(),
			)
			c.sendFrame(EventError, map[string]string{"error": err.Error()})
			continue
		}

		c.session.Dispatch(event)
	}
}

// WritePump drains the send channel onto the wire and keeps the
// heartbeat going. One writer goroutine per connection; nothing else
// may write to the socket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				// session closed the channel (e.g. slow-consumer drop)
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue puts an already-marshalled frame on the send channel without
// blocking. Reports false when the buffer is full so the caller can
// drop the slow consumer.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// sendFrame marshals and enqueues a frame addressed to this client only.
func (c *Client) sendFrame(event string, data any) {
	payload, err := marshalFrame(event, data)
	if err != nil {
		c.logger.Error("failed_to_marshal_frame",
			"client_id", c.ID,
			"event", event,
			"error", err.Error(),
		)
		return
	}
	if !c.enqueue(payload) {
		c.logger.Warn("send_buffer_full",
			"client_id", c.ID,
			"event", event,
		)
	}
}

// Close closes the underlying connection.
func (c *Client) Close() {
	if c.Conn != nil {
		c.Conn.Close()
	}
}
