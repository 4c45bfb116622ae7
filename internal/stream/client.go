package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single frame or control write.
	writeWait = 10 * time.Second

	// pongWait is how long a client may stay silent before it is presumed gone.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait so a healthy client always
	// has a ping to answer before the deadline.
	pingPeriod = 54 * time.Second

	// Clients never send meaningful payloads.
	maxMessageSize = 512
)

// client is one WebSocket subscriber. Frames flow hub -> send -> writePump;
// readPump only services control frames and detects disconnects.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func (c *client) readPump() {
	defer c.hub.remove(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Inbound payloads are discarded; reading keeps pongs flowing.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
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
				// Hub removed us; say goodbye properly.
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
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
