package hub

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client is one live connection, tagged at handshake time with the principal
// from the session cookie.
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	// Buffered channel of outbound messages.
	send chan []byte

	userID   string
	username string
}

// command is what the browser sends over the socket. Only room membership
// changes come inbound; all domain mutations go through HTTP.
type command struct {
	Type     string `json:"type"`
	ThreadID string `json:"threadId"`
}

func NewClient(h *Hub, conn *websocket.Conn, userID, username string) *Client {
	return &Client{
		conn:     conn,
		hub:      h,
		send:     make(chan []byte, 256),
		userID:   userID,
		username: username,
	}
}

func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) Username() string {
	return c.username
}

// ReadPump consumes inbound commands until the connection drops, then
// guarantees membership cleanup. Must run in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("hub: read error for %s: %v", c.userID, err)
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("hub: bad command from %s: %v", c.userID, err)
			continue
		}

		switch cmd.Type {
		case "join-thread":
			if err := c.hub.JoinRoom(c, cmd.ThreadID); err != nil {
				log.Printf("hub: join %q rejected for %s: %v", cmd.ThreadID, c.userID, err)
			}
		case "leave-thread":
			if err := c.hub.LeaveRoom(c, cmd.ThreadID); err != nil {
				log.Printf("hub: leave %q rejected for %s: %v", cmd.ThreadID, c.userID, err)
			}
		default:
			log.Printf("hub: unknown command %q from %s", cmd.Type, c.userID)
		}
	}
}

// WritePump pushes hub deliveries and keepalive pings to the peer. Must run in
// its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed this connection.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
