package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // API is same-origin agnostic; auth is out of scope here
	},
}

// jobEventTypes is the set of events streamed to websocket clients
var jobEventTypes = []interfaces.EventType{
	interfaces.EventJobCompleted,
	interfaces.EventJobFailed,
	interfaces.EventJobCancelled,
	interfaces.EventJobTimeout,
}

// wsMessage is the wire shape for streamed job events
type wsMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// WebSocketHandler streams job lifecycle events to connected clients
type WebSocketHandler struct {
	logger  arbor.ILogger
	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewWebSocketHandler creates the handler and subscribes it to all job
// lifecycle events on the bus.
func NewWebSocketHandler(events interfaces.EventService, logger arbor.ILogger) (*WebSocketHandler, error) {
	h := &WebSocketHandler{
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}

	for _, eventType := range jobEventTypes {
		if err := events.Subscribe(eventType, h.handleEvent); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// HandleWebSocket handles GET /ws upgrade requests
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Int("clients", count).Msg("WebSocket client connected")

	// Read loop exists only to observe the close; inbound frames are ignored
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Close disconnects all clients
func (h *WebSocketHandler) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

func (h *WebSocketHandler) handleEvent(ctx context.Context, event interfaces.Event) error {
	h.broadcast(wsMessage{
		Type:      string(event.Type),
		Payload:   event.Payload,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (h *WebSocketHandler) broadcast(msg wsMessage) {
	h.mu.Lock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, writeMu := range h.clients {
		targets[conn] = writeMu
	}
	h.mu.Unlock()

	for conn, writeMu := range targets {
		writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		err := conn.WriteJSON(msg)
		writeMu.Unlock()

		if err != nil {
			h.logger.Debug().Err(err).Msg("Dropping unresponsive WebSocket client")
			h.remove(conn)
		}
	}
}

func (h *WebSocketHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if ok {
		conn.Close()
	}
}
