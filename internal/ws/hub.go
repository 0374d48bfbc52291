package ws

import (
	"sync"

	"go.uber.org/zap"

	"github.com/mansukim1125/run-configurations/internal/domain/execution"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/monitoring"
)

// Message types sent to clients
const (
	TypeConnected             = "connected"
	TypeConfigurationsChanged = "configurations_changed"
	TypeTerminalClosed        = "terminal_closed"
	TypePong                  = "pong"
	TypeError                 = "error"
)

// Message types sent by clients
const (
	TypePing = "ping"
)

// sendBuffer is the per-client queue length; slower clients are dropped
const sendBuffer = 32

// Event is one server-to-client message
type Event struct {
	Type       string `json:"type"`
	TerminalID string `json:"terminal_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Hub fans events out to every connected client
type Hub struct {
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates an empty hub. metrics may be nil.
func NewHub(logger *zap.Logger, metrics *monitoring.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		metrics: metrics,
		clients: make(map[*client]struct{}),
	}
}

// ConfigurationsChanged tells clients to reload the configuration list
func (h *Hub) ConfigurationsChanged() {
	h.Broadcast(Event{Type: TypeConfigurationsChanged})
}

// TerminalClosed tells clients a terminal went away
func (h *Hub) TerminalClosed(term execution.Terminal) {
	h.Broadcast(Event{Type: TypeTerminalClosed, TerminalID: term.ID()})
}

// Broadcast queues event for every client. Clients whose queue is full
// are disconnected.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- event:
			h.recordOut(event.Type)
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow WebSocket client", zap.String("remote", c.remote))
		h.unregister(c)
	}
}

// Len returns the number of connected clients
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.closed = true
	h.mu.Unlock()

	for c := range clients {
		c.stop()
		if h.metrics != nil {
			h.metrics.DecWSConnections()
		}
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.stop()
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

func (h *Hub) recordOut(msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage("out", msgType)
	}
}
