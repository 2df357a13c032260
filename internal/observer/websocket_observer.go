package observer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nyxwell/transmute/internal/logging"
	"github.com/nyxwell/transmute/pkg/transmute"
)

// WebSocketObserver streams events to connected admin-UI clients through a
// Hub, so a running transmuted server can be watched live.
type WebSocketObserver struct {
	filter EventFilter
	logger *logging.Logger
	hub    *Hub
}

// WebSocketObserverOption configures a WebSocketObserver.
type WebSocketObserverOption func(*WebSocketObserver)

// WithWebSocketFilter restricts which events get broadcast.
func WithWebSocketFilter(filter EventFilter) WebSocketObserverOption {
	return func(o *WebSocketObserver) { o.filter = filter }
}

// NewWebSocketObserver builds a WebSocketObserver broadcasting through hub.
func NewWebSocketObserver(hub *Hub, opts ...WebSocketObserverOption) *WebSocketObserver {
	obs := &WebSocketObserver{hub: hub, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(obs)
	}
	return obs
}

func (o *WebSocketObserver) Name() string       { return "websocket" }
func (o *WebSocketObserver) Filter() EventFilter { return o.filter }

func (o *WebSocketObserver) OnEvent(ctx context.Context, event transmute.Event) error {
	payload := eventPayload{
		EventType:   string(event.Type),
		ExecutionID: event.ExecutionID,
		SrcCat:      event.SrcCat,
		DstCat:      event.DstCat,
		EdgeName:    event.EdgeName,
		Attempt:     event.Attempt,
		Timestamp:   event.Timestamp,
	}
	if event.Err != nil {
		errStr := event.Err.Error()
		payload.Error = &errStr
	}

	data, err := json.Marshal(wireMessage{Type: "event", Event: &payload, Timestamp: event.Timestamp})
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to marshal websocket message", "error", err)
		return err
	}
	o.hub.BroadcastToExecution(event.ExecutionID, data)
	return nil
}

type wireMessage struct {
	Type      string        `json:"type"`
	Event     *eventPayload `json:"event,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

type eventPayload struct {
	EventType   string    `json:"event_type"`
	ExecutionID string    `json:"execution_id"`
	SrcCat      string    `json:"src_cat"`
	DstCat      string    `json:"dst_cat"`
	EdgeName    string    `json:"edge_name,omitempty"`
	Attempt     int       `json:"attempt,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Error       *string   `json:"error,omitempty"`
}

// Client is one connected WebSocket subscriber, optionally scoped to a
// single execution ID.
type Client struct {
	ID          string
	conn        *websocket.Conn
	send        chan []byte
	hub         *Hub
	executionID string
}

// Hub tracks connected Clients and broadcasts messages to them.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *logging.Logger
}

// NewHub builds a Hub and starts its dispatch loop in the background.
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
	go h.run()
	return h
}

// NewClient wraps a websocket connection, optionally scoped to executionID
// ("" subscribes to every execution).
func NewClient(id string, conn *websocket.Conn, hub *Hub, executionID string) *Client {
	return &Client{ID: id, conn: conn, send: make(chan []byte, 256), hub: hub, executionID: executionID}
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// BroadcastToExecution sends message to every client either unscoped or
// scoped to executionID.
func (h *Hub) BroadcastToExecution(executionID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.executionID == "" || c.executionID == executionID {
			select {
			case c.send <- message:
			default:
				h.logger.WarnContext(context.Background(), "client send buffer full, dropping message", "client_id", c.ID)
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WritePump drains c.send to the underlying connection until the channel is
// closed or a write fails, then closes the connection.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump discards inbound messages (this hub is broadcast-only) and
// unregisters the client when the connection drops.
func (c *Client) ReadPump() {
	defer c.hub.Unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
