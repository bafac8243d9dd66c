package socket

import (
	"net/http"
	"sync"
	"time"

	"presodeck/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin allows us to connect from the Vite dev server
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live connection to one deck.
type Client struct {
	ID       string
	Hub      *Hub
	Conn     *websocket.Conn
	Slug     string
	PresoID  string
	UserID   string
	Nickname string
	Send     chan []byte

	done     chan struct{}
	doneOnce sync.Once
}

// ServeWs resolves identity and joins the caller to its deck. A
// missing slug or unknown deck rejects the attempt before the
// upgrade, so a failed join never creates session state and never
// broadcasts.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		http.Error(w, "slug required", http.StatusBadRequest)
		return
	}
	nickname := r.URL.Query().Get("nickname")
	if nickname == "" {
		nickname = "guest"
	}

	preso, user, membership, err := hub.Resolve(slug, nickname)
	if err == ErrNotFound {
		logger.Sugar.Warnf("Connection rejected: presentation %s not found", slug)
		http.Error(w, "presentation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to resolve session for %s/%s: %v", slug, nickname, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		ID:       uuid.NewString(),
		Hub:      hub,
		Conn:     conn,
		Slug:     preso.Slug,
		PresoID:  preso.ID,
		UserID:   user.ID,
		Nickname: user.Nickname,
		Send:     make(chan []byte, 256),
		done:     make(chan struct{}),
	}

	client.Hub.register(client, membership.Role)

	go client.writePump()
	go client.readPump()
}

func (c *Client) shutdown() {
	c.doneOnce.Do(func() { close(c.done) })
}

// readPump processes inbound operations one at a time, in arrival
// order, until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}
		c.Hub.handleMessage(c, raw)
	}
}

// writePump is the single writer for this connection; draining Send
// in order is what gives every recipient in-order delivery.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second) // Send ping every 30s
	defer ticker.Stop()

	for {
		select {
		case message := <-c.Send:
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection is dead
			}
		case <-c.done:
			return
		}
	}
}
