package realtime

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second // Time allowed to write a message to the peer.
	maxMessageSize = 4096             // Maximum message size allowed from peer.
	sendBuffer     = 256              // Outbound frames queued per client before it counts as slow.
)

// Client is a middleman between one websocket connection and the hub.
// The write pump is the only goroutine that writes to conn.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	ping    chan struct{}
	alive   atomic.Bool
	groupID string
	userID  string
}

// NewClient returns a client for conn scoped to groupID. It is not registered until Hub.Register.
func NewClient(hub *Hub, conn *websocket.Conn, groupID, userID string) *Client {
	c := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		ping:    make(chan struct{}, 1),
		groupID: groupID,
		userID:  userID,
	}
	c.alive.Store(true)
	return c
}

// GroupID returns the family group the client is registered under.
func (c *Client) GroupID() string { return c.groupID }

// UserID returns the authenticated user behind the connection.
func (c *Client) UserID() string { return c.userID }

// enqueue queues msg without blocking. Returns false when the buffer is full.
// Callers hold the hub lock so send is never closed concurrently.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump consumes frames from the peer until the connection fails, then unregisters the client.
// Inbound messages are discarded; reading keeps pong and close handling running.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Printf("realtime: read error for user %s: %v", c.userID, err)
			}
			return
		}
	}
}

// WritePump drains the send queue in FIFO order and writes pings requested by the heartbeat.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("realtime: write error for user %s: %v", c.userID, err)
				return
			}
		case <-c.ping:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
