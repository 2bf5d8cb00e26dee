// Package realtime pushes match-thread events to connected WebSocket clients.
package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oggyb/blinder/internal/observability"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

// Event types pushed to clients.
const (
	EventMessage = "message"
	EventTyping  = "typing"
	EventInfo    = "info"
	EventError   = "error"
)

// Event is the envelope written to every socket.
type Event struct {
	Type string `json:"type"`
	From string `json:"from,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Upgrader accepts any origin; CORS is enforced on the REST surface.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	matchID string
	userID  string
	conn    *websocket.Conn
	send    chan Event
	done    chan struct{}
}

// Hub manages WebSocket connections grouped by match id.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
	log   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*client]struct{}),
		log:   log,
	}
}

// Serve attaches conn to the room of matchID and blocks until it closes.
//
// stillOpen, when set, runs after the client joined the room. A CloseRoom
// racing with the join either finds the client in the room or happens before
// stillOpen, which then fails and the socket is closed here.
func (h *Hub) Serve(conn *websocket.Conn, matchID, userID string, stillOpen func() error) {
	c := &client{
		matchID: matchID,
		userID:  userID,
		conn:    conn,
		send:    make(chan Event, sendBuffer),
		done:    make(chan struct{}),
	}
	h.register(c)

	if stillOpen != nil {
		if err := stillOpen(); err != nil {
			h.log.Debug("realtime join rejected", "match_id", matchID, "user_id", userID, "err", err)
			h.unregister(c)
			closeConn(conn, "match closed")
			return
		}
	}
	c.send <- Event{Type: EventInfo, Data: "connected"}

	go h.writer(c)
	h.reader(c)
}

// Publish delivers evt to every client in the room. Slow clients drop events.
func (h *Hub) Publish(matchID string, evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[matchID] {
		select {
		case c.send <- evt:
		default:
			h.log.Warn("realtime buffer full, dropping event", "match_id", matchID, "user_id", c.userID)
		}
	}
}

// Count returns how many clients are attached to a room.
func (h *Hub) Count(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// CloseRoom disconnects every client of a match, e.g. after an unmatch.
func (h *Hub) CloseRoom(matchID string) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[matchID]))
	for c := range h.rooms[matchID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		closeConn(c.conn, "match closed")
	}
}

func closeConn(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(writeWait))
	_ = conn.Close()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.matchID] == nil {
		h.rooms[c.matchID] = make(map[*client]struct{})
	}
	h.rooms[c.matchID][c] = struct{}{}
	observability.WebSocketConnections.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if peers, ok := h.rooms[c.matchID]; ok {
		if _, ok := peers[c]; !ok {
			return
		}
		delete(peers, c)
		if len(peers) == 0 {
			delete(h.rooms, c.matchID)
		}
		observability.WebSocketConnections.Dec()
	}
}

// reader only understands typing notifications; everything else is rejected.
func (h *Hub) reader(c *client) {
	defer func() {
		h.unregister(c)
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in Event
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("realtime read failed", "match_id", c.matchID, "err", err)
			}
			return
		}

		switch in.Type {
		case EventTyping:
			h.Publish(c.matchID, Event{Type: EventTyping, From: c.userID})
		default:
			select {
			case c.send <- Event{Type: EventError, Data: "unsupported event type"}:
			default:
			}
		}
	}
}

func (h *Hub) writer(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case evt := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			// ping to keep the connection alive
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
