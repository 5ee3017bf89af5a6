package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection watching a room. The feed is one way;
// inbound frames only keep the connection alive.
type Client struct {
	hub      *Hub
	room     *RoomHub
	conn     *websocket.Conn
	send     chan []byte
	username string
}

// Serve upgrades the request and streams the room's events until the client
// disconnects
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, roomID int64, username string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("roomID", roomID).Debug("Websocket upgrade failed")
		return
	}

	room := h.acquire(roomID)
	client := &Client{
		hub:      h,
		room:     room,
		conn:     conn,
		send:     make(chan []byte, 64),
		username: username,
	}

	select {
	case room.register <- client:
	case <-room.quit:
		h.release(room)
		_ = conn.Close()
		return
	}

	log.WithFields(log.Fields{
		"roomID":   roomID,
		"username": username,
	}).Debug("Live feed client connected")

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.room.unregister <- c:
		case <-c.room.quit:
		}
		c.hub.release(c.room)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
