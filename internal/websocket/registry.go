package websocket

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks which live connections have joined which rooms. It is
// an injected component, not a package global, so tests can run isolated
// instances. State is volatile: a restart clears every room.
type Registry struct {
	mu sync.RWMutex

	// room id -> connection id -> client
	rooms map[uuid.UUID]map[uuid.UUID]*Client

	// connection id -> set of joined room ids (inverse mapping)
	conns map[uuid.UUID]map[uuid.UUID]bool
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[uuid.UUID]map[uuid.UUID]*Client),
		conns: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

// Join adds the connection to a room. Membership authorization happens
// before this call; the registry only tracks who is reachable.
func (r *Registry) Join(client *Client, roomId uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[roomId] == nil {
		r.rooms[roomId] = make(map[uuid.UUID]*Client)
	}
	r.rooms[roomId][client.ID] = client

	if r.conns[client.ID] == nil {
		r.conns[client.ID] = make(map[uuid.UUID]bool)
	}
	r.conns[client.ID][roomId] = true
}

// Leave removes the connection from a room. Returns false when the
// connection was not in the room.
func (r *Registry) Leave(client *Client, roomId uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomId]
	if !ok {
		return false
	}
	if _, ok := members[client.ID]; !ok {
		return false
	}

	delete(members, client.ID)
	if len(members) == 0 {
		delete(r.rooms, roomId)
	}

	if joined := r.conns[client.ID]; joined != nil {
		delete(joined, roomId)
		if len(joined) == 0 {
			delete(r.conns, client.ID)
		}
	}
	return true
}

// MembersOf returns the connections currently joined to a room.
func (r *Registry) MembersOf(roomId uuid.UUID) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*Client, 0, len(r.rooms[roomId]))
	for _, c := range r.rooms[roomId] {
		members = append(members, c)
	}
	return members
}

// RoomsOf returns the rooms a connection has joined.
func (r *Registry) RoomsOf(connId uuid.UUID) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]uuid.UUID, 0, len(r.conns[connId]))
	for roomId := range r.conns[connId] {
		rooms = append(rooms, roomId)
	}
	return rooms
}

// InRoom reports whether the connection has joined the room.
func (r *Registry) InRoom(connId, roomId uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomId]
	if !ok {
		return false
	}
	_, ok = members[connId]
	return ok
}

// OnlineUserCount counts distinct users joined to a room; a user with
// two connections counts once.
func (r *Registry) OnlineUserCount(roomId uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make(map[uuid.UUID]bool)
	for _, c := range r.rooms[roomId] {
		users[c.UserID] = true
	}
	return len(users)
}

// Disconnect removes the connection from every room it was in and
// returns those rooms so the caller can notify remaining members.
func (r *Registry) Disconnect(client *Client) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.conns[client.ID]
	rooms := make([]uuid.UUID, 0, len(joined))
	for roomId := range joined {
		rooms = append(rooms, roomId)
		if members := r.rooms[roomId]; members != nil {
			delete(members, client.ID)
			if len(members) == 0 {
				delete(r.rooms, roomId)
			}
		}
	}
	delete(r.conns, client.ID)
	return rooms
}
