// internal/realtime/ws.go
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"taskhub/internal/auth"
	"taskhub/internal/repo"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// wsConn adapts a websocket to the Conn interface. Outbound events go
// through a buffered channel drained by a single writer goroutine;
// Send never blocks and drops when the buffer is full.
type wsConn struct {
	ws   *websocket.Conn
	out  chan Event
	done chan struct{}
	once sync.Once
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws, out: make(chan Event, sendBuffer), done: make(chan struct{})}
}

func (c *wsConn) Send(e Event) {
	select {
	case <-c.done:
	case c.out <- e:
	default:
		slog.Debug("outbound buffer full, event dropped", "event", e.Event)
	}
}

func (c *wsConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.ws.Close()
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case e := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// clientFrame is what clients send: currently only the announce event.
type clientFrame struct {
	Event string `json:"event"`
}

// Handler upgrades to a websocket. The bearer token is resolved before
// the upgrade: requests with a missing or invalid token, or a token for
// a user that no longer exists, are rejected with 401. The connection
// joins the broadcast set immediately; addressed delivery starts when
// the client announces.
func Handler(hub *Hub, store repo.Store, tokens auth.Tokens, allowedOrigin string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		},
	}
	return func(w http.ResponseWriter, req *http.Request) {
		token := req.URL.Query().Get("token")
		if token == "" {
			if h := req.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			http.Error(w, "not authorized, no token", http.StatusUnauthorized)
			return
		}
		userID, ok := tokens.VerifyAccessToken(token)
		if !ok {
			http.Error(w, "not authorized, token failed", http.StatusUnauthorized)
			return
		}
		if _, err := store.GetUserByID(req.Context(), userID); err != nil {
			http.Error(w, "not authorized, user not found", http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			// Upgrade already wrote the error response
			return
		}
		c := newWSConn(ws)
		hub.Register(c)
		go c.writePump()
		go readPump(hub, c, userID)
	}
}

// readPump consumes client frames until the connection dies, then
// removes the connection from the hub. An announce frame binds the
// authenticated identity in the registry; the identity always comes
// from the handshake token, never from the frame.
func readPump(hub *Hub, c *wsConn, userID uuid.UUID) {
	defer func() {
		hub.Unregister(c)
		_ = c.Close()
	}()
	c.ws.SetReadLimit(512)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Event == "announce" {
			hub.Announce(userID, c)
		}
	}
}
