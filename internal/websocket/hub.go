package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"finanalytics/internal/infrastructure"
	"finanalytics/pkg/contracts/events"
)

const (
	// broadcastBuffer is how many events may wait for the hub loop
	broadcastBuffer = 256
	// sendBuffer is how many events may wait for one slow subscriber
	sendBuffer = 256
)

// HubStats is a point-in-time view of the hub
type HubStats struct {
	ActiveClients    int   `json:"activeClients"`
	TotalConnections int64 `json:"totalConnections"`
	MessagesSent     int64 `json:"messagesSent"`
	MessagesDropped  int64 `json:"messagesDropped"`
}

// Hub fans analysis run events out to every subscribed client
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	stats   HubStats
	running bool
	stopped bool

	logger  *slog.Logger
	metrics *hubMetrics

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. meter may be nil when metrics are disabled.
func NewHub(logger *slog.Logger, meter metric.Meter) (*Hub, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	m, err := newHubMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create websocket metrics: %w", err)
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		metrics:    m,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

// Start runs the hub loop in its own goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running || h.stopped {
		return
	}
	h.running = true
	go h.run()
}

func (h *Hub) run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			h.closeClients()
			h.mu.Unlock()
			h.logger.Info("Hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			count := h.add(client)
			h.mu.Unlock()
			h.registered(ctx, client, count)

		case client := <-h.unregister:
			h.mu.Lock()
			removed := h.remove(client)
			h.mu.Unlock()
			if removed {
				h.unregistered(ctx, client)
			}

		case message := <-h.broadcast:
			h.deliver(ctx, message)
		}
	}
}

// add records client and queues its connection event. h.mu must be held.
func (h *Hub) add(client *Client) int {
	h.clients[client] = true
	h.stats.TotalConnections++
	h.stats.ActiveClients = len(h.clients)

	if msg, err := json.Marshal(events.New(events.TypeConnection, "", events.Connection{
		ClientID: client.id,
		Status:   "connected",
	})); err == nil {
		client.send <- msg // fresh buffer, cannot block
	}
	return len(h.clients)
}

func (h *Hub) registered(ctx context.Context, client *Client, count int) {
	h.metrics.connected(ctx)
	h.logger.InfoContext(client.context(), "Client registered",
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr),
		slog.Int("total_clients", count))
}

// remove forgets client and closes its send channel. h.mu must be held.
func (h *Hub) remove(client *Client) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	close(client.send)
	h.stats.ActiveClients = len(h.clients)
	return true
}

func (h *Hub) unregistered(ctx context.Context, client *Client) {
	h.metrics.disconnected(ctx)
	h.logger.InfoContext(client.context(), "Client unregistered",
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// closeClients closes and forgets every client. h.mu must be held.
func (h *Hub) closeClients() {
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.stats.ActiveClients = 0
}

// deliver queues message on every client; saturated clients are dropped
func (h *Hub) deliver(ctx context.Context, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for client := range h.clients {
		select {
		case client.send <- message:
			sent++
		default:
			close(client.send)
			delete(h.clients, client)
			h.stats.MessagesDropped++
			h.metrics.drop(ctx, "slow_client")
			h.metrics.disconnected(ctx)
			h.logger.Warn("Client send buffer full, disconnecting", slog.String("client_id", client.id))
		}
	}
	h.stats.ActiveClients = len(h.clients)
	h.stats.MessagesSent += int64(sent)
	h.metrics.delivered(ctx, sent)
}

// Publish queues event for all subscribers without blocking. Events are
// dropped when the hub is saturated.
func (h *Hub) Publish(ctx context.Context, event events.Event) {
	if event.TraceID == "" {
		event.TraceID = infrastructure.GetTraceID(ctx)
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling event",
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.mu.Lock()
		h.stats.MessagesDropped++
		h.mu.Unlock()
		h.metrics.drop(ctx, "hub_full")
		h.logger.WarnContext(ctx, "Broadcast queue full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// Register subscribes client. Before Start the client is added directly and
// receives events once the loop runs; after Stop it is closed immediately.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if !h.running && !h.stopped {
		count := h.add(client)
		h.mu.Unlock()
		h.registered(context.Background(), client, count)
		return
	}
	h.mu.Unlock()

	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes client; it is safe to call before Start and after Stop
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if !h.running && !h.stopped {
		removed := h.remove(client)
		h.mu.Unlock()
		if removed {
			h.unregistered(context.Background(), client)
		}
		return
	}
	h.mu.Unlock()

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns the hub counters
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats
}

// Stop closes every client and ends the hub loop. A stopped hub cannot be
// restarted.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		running := h.running
		h.stopped = true
		if !running {
			h.closeClients()
		}
		h.mu.Unlock()

		close(h.quit)
		if running {
			<-h.done
		} else {
			close(h.done)
		}
	})
}
