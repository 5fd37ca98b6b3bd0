package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-chatbot-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisChannel carries transcript updates across instances so a client can be
// connected to any node while its session turn is handled on another.
const redisChannel = "chat_transcript_events"

type Hub struct {
	// Identifies this instance on the shared channel so it can skip its
	// own publishes; local clients are already served directly by Send.
	instanceID string

	// Registered clients map: SessionID -> List of Clients (multi-tab)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		instanceID: uuid.NewString(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes a transcript update to every client watching the session.
func (h *Hub) Send(sessionID uuid.UUID, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "transcript",
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal transcript payload", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return
	}

	h.mu.RLock()
	clients, localFound := h.clients[sessionID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				// Run owns the channel close; only enqueue the removal.
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
				h.unregister <- client
			}
		}
	}

	// Publish for other instances; the session may be watched elsewhere.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"origin_instance_id": h.instanceID,
			"target_session_id":  sessionID.String(),
			"message":            json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), redisChannel, jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel. When a message
	// arrives, deliver it only if the target session has local clients;
	// otherwise the event is simply not ours.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		h.handleRedisPayload(msg.Payload)
	}
}

func (h *Hub) handleRedisPayload(raw string) {
	var payload struct {
		OriginInstanceID string          `json:"origin_instance_id"`
		TargetSessionID  string          `json:"target_session_id"`
		Message          json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Printf("Redis msg parse error: %v", err)
		return
	}

	// Our own publish; local clients were already served in Send.
	if payload.OriginInstanceID == h.instanceID {
		return
	}

	sid, err := uuid.Parse(payload.TargetSessionID)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients, found := h.clients[sid]
	h.mu.RUnlock()
	if !found {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- payload.Message:
		default:
			h.unregister <- client
		}
	}
}
