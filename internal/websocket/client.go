package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is a middleman between the websocket connection and the hub.
// One Client per connection: a user on two devices has two Clients with
// the same UserID but distinct IDs.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// ID of this connection. Assigned once, never reused.
	ID uuid.UUID

	// UserID associated with this connection.
	UserID uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte

	// Guards Send against writes racing the close in closeSend.
	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		ID:     uuid.New(),
		UserID: userID,
		Send:   make(chan []byte, 256),
	}
}

// readPump pumps inbound frames from the websocket connection to the
// dispatcher.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error for user %s: %v", c.UserID, err)
			}
			break
		}
		c.Hub.dispatcher.Handle(c, raw)
	}
}

// writePump pumps messages from the hub to the websocket connection.
// Each frame carries exactly one event envelope; queued envelopes are
// flushed as separate frames so the client never has to split them.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			n := len(c.Send)
			for i := 0; i < n; i++ {
				if err := c.Conn.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues data for the write pump. Returns false when the frame
// was dropped: the connection is closing or its buffer is full. Room
// broadcasts run in other connections' reader goroutines, so the closed
// flag must be checked under the same lock closeSend takes.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend shuts the outbound channel down exactly once. Concurrent
// trySend callers observe the closed flag and drop instead of panicking
// on a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// push serializes a server event and queues it on this connection. A
// full buffer disconnects the client rather than blocking the caller;
// the unregister hand-off is asynchronous because the hub's Run loop
// itself may be the caller.
func (c *Client) push(event ServerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if !c.trySend(data) {
		go func() { c.Hub.unregister <- c }()
	}
}
