package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event is the JSON frame pushed to connected clients
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ConnectionObserver is told when the number of open connections changes
type ConnectionObserver interface {
	RealtimeConnected(delta int)
}

// Client is one websocket connection of a user. A user may hold several.
type Client struct {
	hub    *Hub
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks connected clients per user and fans events out to them
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	observer ConnectionObserver
	logger   *logrus.Logger
}

// NewHub creates a hub. observer may be nil.
func NewHub(logger *logrus.Logger, observer ConnectionObserver) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		observer:   observer,
		logger:     logger,
	}
}

// Run processes registrations until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]struct{})
			}
			h.clients[client.userID][client] = struct{}{}
			h.mu.Unlock()
			h.observe(1)

			h.logger.WithField("user_id", client.userID).Debug("Realtime client registered")

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for userID, set := range h.clients {
				for client := range set {
					close(client.send)
					h.observe(-1)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	close(client.send)
	h.observe(-1)

	h.logger.WithField("user_id", client.userID).Debug("Realtime client unregistered")
}

func (h *Hub) observe(delta int) {
	if h.observer != nil {
		h.observer.RealtimeConnected(delta)
	}
}

// SendToUser delivers an event to every connection of the user. It never
// blocks; a client whose buffer is full misses the event.
func (h *Hub) SendToUser(userID uuid.UUID, event Event) int {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal realtime event")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[userID] {
		select {
		case client.send <- data:
			delivered++
		default:
			h.logger.WithField("user_id", userID).Warn("Realtime send buffer full, dropping event")
		}
	}
	return delivered
}

// IsUserConnected reports whether the user has at least one open connection
func (h *Hub) IsUserConnected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// ConnectionCount returns the number of open connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
