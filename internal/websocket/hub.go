package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"chatlink-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// clusterPayload is the envelope relayed between instances over redis.
// Origin identifies the publishing instance so it can skip its own
// messages; local delivery already happened before the publish.
type clusterPayload struct {
	Origin       string          `json:"origin"`
	RoomId       string          `json:"room_id,omitempty"`
	TargetUserId string          `json:"target_user_id,omitempty"`
	Message      json.RawMessage `json:"message"`
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

	// Room membership for this instance
	registry *Registry

	// Routes inbound client frames
	dispatcher *Dispatcher

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Identifies this instance on the cluster channel
	instanceID string

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(registry *Registry, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		registry:   registry,
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// SetDispatcher wires the frame router. Must be called before Run; the
// hub and dispatcher reference each other, so one side is set late.
func (h *Hub) SetDispatcher(d *Dispatcher) {
	h.dispatcher = d
}

// Register hands a freshly upgraded connection to the hub and starts
// its pumps. Blocks until the connection closes.
func (h *Hub) Register(client *Client) {
	h.register <- client
	go client.writePump()
	client.readPump()
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
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"user_id": client.UserID,
				"conn_id": client.ID,
			})

		case client := <-h.unregister:
			h.disconnect(client)
		}
	}
}

// disconnect tears a connection down: registry cleanup first so the
// leave notifications see the final membership, then the client map.
func (h *Hub) disconnect(client *Client) {
	leftRooms := h.registry.Disconnect(client)

	h.mu.Lock()
	removed := false
	if clients, ok := h.clients[client.UserID]; ok {
		for i, c := range clients {
			if c == client {
				h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
				client.closeSend()
				removed = true
				break
			}
		}
		if len(h.clients[client.UserID]) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	h.mu.Unlock()

	if !removed {
		return
	}

	h.logger.Info("Hub", "Client unregistered", map[string]interface{}{
		"user_id": client.UserID,
		"conn_id": client.ID,
		"rooms":   len(leftRooms),
	})

	for _, roomId := range leftRooms {
		h.BroadcastToRoom(roomId, ServerEvent{
			Event: EventUserLeft,
			Data:  RoomEventData{RoomId: roomId, UserId: client.UserID},
		}, client.ID)
	}
}

// BroadcastToRoom fans an event out to every connection joined to the
// room, skipping the excluded connection id (uuid.Nil excludes none).
func (h *Hub) BroadcastToRoom(roomId uuid.UUID, event ServerEvent, exclude uuid.UUID) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	for _, client := range h.registry.MembersOf(roomId) {
		if client.ID == exclude {
			continue
		}
		h.deliver(client, data)
	}

	if h.rdb != nil {
		h.publishToCluster(clusterPayload{
			Origin:  h.instanceID,
			RoomId:  roomId.String(),
			Message: data,
		})
	}
}

// SendToUser delivers an event to every connection of one user, on this
// instance and, via redis, on the others.
func (h *Hub) SendToUser(userID uuid.UUID, event ServerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		h.deliver(client, data)
	}

	if h.rdb != nil {
		h.publishToCluster(clusterPayload{
			Origin:       h.instanceID,
			TargetUserId: userID.String(),
			Message:      data,
		})
	}
}

// deliver drops the frame and schedules a disconnect when the client's buffer
// is full. The unregister send runs in its own goroutine because deliver is
// reached from Run, which is the sole receiver of h.unregister.
func (h *Hub) deliver(client *Client, data []byte) {
	if client.trySend(data) {
		return
	}
	h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{
		"user_id": client.UserID,
		"conn_id": client.ID,
	})
	go func() { h.unregister <- client }()
}

func (h *Hub) publishToCluster(payload clusterPayload) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), clusterChannel, jsonPayload).Err(); err != nil {
		h.logger.Warn("Hub", "Cluster publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload clusterPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Cluster msg parse error", map[string]interface{}{"error": err.Error()})
			continue
		}

		// Our own publish; local delivery already happened.
		if payload.Origin == h.instanceID {
			continue
		}

		if payload.RoomId != "" {
			roomId, err := uuid.Parse(payload.RoomId)
			if err != nil {
				continue
			}
			for _, client := range h.registry.MembersOf(roomId) {
				h.deliver(client, payload.Message)
			}
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserId)
		if err != nil {
			continue
		}
		h.mu.RLock()
		clients := append([]*Client(nil), h.clients[uid]...)
		h.mu.RUnlock()
		for _, client := range clients {
			h.deliver(client, payload.Message)
		}
	}
}
