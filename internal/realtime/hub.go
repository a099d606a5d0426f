// Package realtime pushes production board events to websocket clients of
// the same organisation.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"timber-backend/internal/metrics"
	"timber-backend/internal/timeutil"
)

const writeTimeout = 5 * time.Second

// Event is the message written to board clients
type Event struct {
	Type           string    `json:"type"`
	OrganisationID int       `json:"organisation_id"`
	Payload        any       `json:"payload"`
	SentAt         time.Time `json:"sent_at"`
}

type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[int]map[*websocket.Conn]bool // organisation -> connections
	clientsMux sync.Mutex
	broadcast  chan Event
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[int]map[*websocket.Conn]bool),
		broadcast: make(chan Event, 64),
	}
}

// Publish queues an event for the organisation's clients. Events are
// dropped when the queue is full so callers never block.
func (h *Hub) Publish(orgID int, eventType string, payload any) {
	event := Event{Type: eventType, OrganisationID: orgID, Payload: payload, SentAt: timeutil.Now()}
	select {
	case h.broadcast <- event:
	default:
		zap.L().Warn("production board queue full, dropping event", zap.String("type", eventType))
	}
}

// Run delivers queued events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) deliver(event Event) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	for conn := range h.clients[event.OrganisationID] {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			h.remove(event.OrganisationID, conn)
		}
	}
}

// ServeWS upgrades the request and keeps the connection registered for
// orgID until the client goes away
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, orgID int) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	if h.clients[orgID] == nil {
		h.clients[orgID] = make(map[*websocket.Conn]bool)
	}
	h.clients[orgID][conn] = true
	metrics.WebsocketClients.Inc()
	h.clientsMux.Unlock()

	// Clients only listen; reading detects the disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			h.remove(orgID, conn)
			h.clientsMux.Unlock()
			return
		}
	}
}

// remove must be called with clientsMux held
func (h *Hub) remove(orgID int, conn *websocket.Conn) {
	conns := h.clients[orgID]
	if !conns[conn] {
		return
	}
	delete(conns, conn)
	metrics.WebsocketClients.Dec()
	if len(conns) == 0 {
		delete(h.clients, orgID)
	}
}

func (h *Hub) closeAll() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	for orgID, conns := range h.clients {
		for conn := range conns {
			conn.Close()
			h.remove(orgID, conn)
		}
	}
}

// ClientCount returns the number of connected clients of an organisation
func (h *Hub) ClientCount(orgID int) int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients[orgID])
}
