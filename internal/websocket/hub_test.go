package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newHubClient(h *Hub, userID uuid.UUID, buffer int) *Client {
	return &Client{
		Hub:    h,
		ID:     uuid.New(),
		UserID: userID,
		Send:   make(chan []byte, buffer),
	}
}

func registerClient(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	select {
	case h.register <- c:
	case <-time.After(2 * time.Second):
		t.Fatal("register did not complete")
	}
}

// A disconnect fans a user_left event out to the remaining room members. When
// one of them has a saturated Send buffer the hub must drop the frame and keep
// serving registrations instead of wedging on its own unregister channel.
func TestHubDisconnectWithSaturatedPeer(t *testing.T) {
	hub := NewHub(NewRegistry(), nil, nopLogger{})
	go hub.Run()

	room := uuid.New()
	slow := newHubClient(hub, uuid.New(), 1)
	fast := newHubClient(hub, uuid.New(), 16)

	registerClient(t, hub, slow)
	registerClient(t, hub, fast)
	hub.registry.Join(slow, room)
	hub.registry.Join(fast, room)

	// Saturate the slow client so the user_left broadcast cannot be queued.
	slow.Send <- []byte("{}")

	select {
	case hub.unregister <- fast:
	case <-time.After(2 * time.Second):
		t.Fatal("unregister did not complete")
	}

	// The hub must still accept new connections afterwards.
	registerClient(t, hub, newHubClient(hub, uuid.New(), 16))
}

func TestClientTrySendAfterClose(t *testing.T) {
	c := newTestClient(uuid.New())

	if !c.trySend([]byte("a")) {
		t.Fatal("trySend on an open client should succeed")
	}

	c.closeSend()
	c.closeSend() // closing twice must not panic

	if c.trySend([]byte("b")) {
		t.Fatal("trySend after closeSend should report failure")
	}
}

// Broadcasts run on reader goroutines while disconnects close the Send
// channel from the hub loop. The two must never race into a send on a
// closed channel.
func TestHubBroadcastRacingDisconnect(t *testing.T) {
	hub := NewHub(NewRegistry(), nil, nopLogger{})
	go hub.Run()

	room := uuid.New()
	event := ServerEvent{
		Event: EventUserLeft,
		Data:  RoomEventData{RoomId: room},
	}

	for i := 0; i < 50; i++ {
		c := newHubClient(hub, uuid.New(), 1)
		registerClient(t, hub, c)
		hub.registry.Join(c, room)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				hub.BroadcastToRoom(room, event, uuid.Nil)
			}
		}()
		go func() {
			defer wg.Done()
			hub.unregister <- c
		}()
		wg.Wait()
	}
}
