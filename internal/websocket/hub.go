package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"churnguard-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FeedMessage is one live update pushed to a business owner's recovery
// inbox: a case opening, a case resolving, or a customer being saved.
type FeedMessage struct {
	Kind       string                 `json:"kind"` // case_opened, case_recovered, customer_saved, risk_updated
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Identifies this process on the cluster channel so messages it
	// published (and already delivered locally) are not delivered twice.
	instanceID string

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes a feed message to one business owner, locally and via
// Redis so every instance with a connection for that user delivers it.
func (h *Hub) Send(userID uuid.UUID, message FeedMessage) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "recovery_feed",
		"data": message,
	})

	h.mu.RLock()
	clients, localFound := h.clients[userID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				// Only the unregister handler closes Send; closing here
				// too would double-close on slow clients.
				h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"origin":         h.instanceID,
			"target_user_id": userID.String(),
			"message":        json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// subscribeToRedis fans in feed messages published by other instances.
// Every instance subscribes to the same channel and delivers only to
// locally-connected targets.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		h.handleClusterPayload([]byte(msg.Payload))
	}
}

func (h *Hub) handleClusterPayload(raw []byte) {
	var payload struct {
		Origin       string          `json:"origin"`
		TargetUserID string          `json:"target_user_id"`
		Message      json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("Redis msg parse error: %v", err)
		return
	}

	// This instance already delivered its own publish in Send.
	if payload.Origin == h.instanceID {
		return
	}

	uid, err := uuid.Parse(payload.TargetUserID)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients, ok := h.clients[uid]
	h.mu.RUnlock()

	if ok {
		for _, client := range clients {
			select {
			case client.Send <- payload.Message:
			default:
				h.unregister <- client
			}
		}
	}
}
