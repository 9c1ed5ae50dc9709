package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"companion-bot-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "companion_session_events"

// Hub tracks the live connections of every session and fans replies out to all of them.
type Hub struct {
	// Registered clients: SessionID -> connections (multi-tab)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	// closed when Run returns; registrations are then applied directly
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, nil on a single instance
	rdb        *redis.Client
	instanceId string
	subscribed chan struct{}

	logger logger.ILogger
}

type clusterEnvelope struct {
	Origin    string          `json:"origin"`
	SessionId string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		subscribed: make(chan struct{}),
		logger:     log,
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		h.add(c)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		h.remove(c)
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
	h.mu.Unlock()
	h.logger.Info("Hub", "Client registered", map[string]interface{}{
		"session_id": client.SessionID,
		"user_id":    client.UserID,
	})
}

// remove closes the client's Send channel exactly once, when it is still registered.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.SessionID]
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info("Hub", "Session has no live connections", map[string]interface{}{"session_id": client.SessionID})
	}
}

// Deliver pushes data to every local connection of the session and to the other instances.
func (h *Hub) Deliver(sessionID string, data []byte) {
	h.deliverLocal(sessionID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEnvelope{Origin: h.instanceId, SessionId: sessionID, Message: data})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to redis", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}
}

// ClientCount reports the local connections attached to a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) deliverLocal(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionID] {
		if !client.Push(data) {
			h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
		}
	}
}

// Every instance subscribes to one channel and keeps what concerns its own sessions.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Error("Hub", "Failed to subscribe to redis", map[string]interface{}{"error": err.Error()})
		return
	}
	close(h.subscribed)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var envelope clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			// Already delivered locally
			if envelope.Origin == h.instanceId {
				continue
			}
			h.deliverLocal(envelope.SessionId, envelope.Message)
		}
	}
}
