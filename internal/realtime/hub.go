package realtime

import (
	"encoding/json"
	"sync"

	"kitchenstock/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ClientBufferSize is the number of pending events a client may hold before
// further events to it are dropped.
const ClientBufferSize = 32

// Client is one websocket connection subscribed to a tenant's changes.
type Client struct {
	conn   *websocket.Conn
	tenant string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub fans change events out to the websocket clients of each tenant.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger.With().Str("component", "realtime-hub").Logger(),
	}
}

func (h *Hub) register(conn *websocket.Conn, tenantCode string) *Client {
	c := &Client{
		conn:   conn,
		tenant: tenantCode,
		send:   make(chan []byte, ClientBufferSize),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	set, ok := h.clients[tenantCode]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[tenantCode] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.tenant]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.tenant)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Broadcast delivers event to every client of its tenant. Clients whose
// buffer is full miss the event; they catch up on the next poll.
func (h *Hub) Broadcast(event models.ChangeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal change event")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[event.TenantCode] {
		select {
		case c.send <- data:
		default:
			h.logger.Debug().Str("tenant", c.tenant).Msg("client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients for tenantCode, or for
// all tenants when tenantCode is empty.
func (h *Hub) ClientCount(tenantCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if tenantCode != "" {
		return len(h.clients[tenantCode])
	}
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	h.mu.Unlock()
	for _, c := range all {
		c.close()
	}
}
