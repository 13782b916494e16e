package websocket

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func newTestClient(userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Send:   make(chan []byte, 16),
	}
}

func TestRegistryJoinLeave(t *testing.T) {
	r := NewRegistry()
	room := uuid.New()
	c := newTestClient(uuid.New())

	r.Join(c, room)

	if !r.InRoom(c.ID, room) {
		t.Fatal("expected connection to be in room after Join")
	}
	if got := len(r.MembersOf(room)); got != 1 {
		t.Fatalf("expected 1 member, got %d", got)
	}

	if !r.Leave(c, room) {
		t.Fatal("expected Leave to report success")
	}
	if r.InRoom(c.ID, room) {
		t.Fatal("expected connection gone after Leave")
	}
	if r.Leave(c, room) {
		t.Fatal("expected second Leave to report failure")
	}
}

func TestRegistryJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	room := uuid.New()
	c := newTestClient(uuid.New())

	r.Join(c, room)
	r.Join(c, room)

	if got := len(r.MembersOf(room)); got != 1 {
		t.Fatalf("expected 1 member after double join, got %d", got)
	}
}

func TestRegistryOnlineUserCount(t *testing.T) {
	r := NewRegistry()
	room := uuid.New()

	// One user on two devices plus one other user.
	userA := uuid.New()
	a1 := newTestClient(userA)
	a2 := newTestClient(userA)
	b := newTestClient(uuid.New())

	r.Join(a1, room)
	r.Join(a2, room)
	r.Join(b, room)

	if got := r.OnlineUserCount(room); got != 2 {
		t.Fatalf("expected 2 distinct users, got %d", got)
	}

	// Closing one of userA's devices keeps them online.
	r.Disconnect(a1)
	if got := r.OnlineUserCount(room); got != 2 {
		t.Fatalf("expected 2 distinct users after one device left, got %d", got)
	}

	r.Disconnect(a2)
	if got := r.OnlineUserCount(room); got != 1 {
		t.Fatalf("expected 1 user, got %d", got)
	}
}

func TestRegistryDisconnectReturnsRooms(t *testing.T) {
	r := NewRegistry()
	roomA := uuid.New()
	roomB := uuid.New()
	c := newTestClient(uuid.New())

	r.Join(c, roomA)
	r.Join(c, roomB)

	rooms := r.Disconnect(c)
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms from Disconnect, got %d", len(rooms))
	}
	if len(r.RoomsOf(c.ID)) != 0 {
		t.Fatal("expected no rooms tracked after Disconnect")
	}
	if r.InRoom(c.ID, roomA) || r.InRoom(c.ID, roomB) {
		t.Fatal("expected connection removed from all rooms")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	room := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient(uuid.New())
			r.Join(c, room)
			r.InRoom(c.ID, room)
			r.OnlineUserCount(room)
			r.Disconnect(c)
		}()
	}
	wg.Wait()

	if got := len(r.MembersOf(room)); got != 0 {
		t.Fatalf("expected empty room after all disconnects, got %d members", got)
	}
}
