package websocket

import (
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestClient(buf int) *Client {
	return &Client{
		send:   make(chan []byte, buf),
		UserID: primitive.NewObjectID(),
		rooms:  make(map[string]bool),
	}
}

// A client that stops draining its send buffer is evicted from the hub
// instead of blocking the rest of the room.
func TestSendRideMessageEvictsStalledClient(t *testing.T) {
	hub := NewHub()
	rideID := primitive.NewObjectID()

	healthy := newTestClient(8)
	stalled := newTestClient(1)

	hub.registerClient(healthy)
	hub.registerClient(stalled)
	hub.JoinRide(healthy, rideID)
	hub.JoinRide(stalled, rideID)

	// Drain the healthy client's welcome frame. The stalled client keeps
	// its welcome frame queued, so its buffer is full.
	<-healthy.send

	hub.SendRideMessage(rideID, Message{Type: "chat_message", UserID: healthy.UserID})

	select {
	case <-healthy.send:
	default:
		t.Fatal("healthy client did not receive the ride message")
	}

	hub.mutex.RLock()
	_, stillThere := hub.clients[stalled]
	roomCount := len(hub.rooms[RideRoom(rideID)])
	hub.mutex.RUnlock()
	if stillThere {
		t.Error("stalled client was not evicted from the hub")
	}
	if roomCount != 1 {
		t.Errorf("ride room has %d clients, want 1", roomCount)
	}

	<-stalled.send
	if _, ok := <-stalled.send; ok {
		t.Error("stalled client send channel left open after eviction")
	}

	// A second eviction of the same client must not close the channel
	// again.
	hub.mutex.Lock()
	hub.evictClient(stalled)
	hub.mutex.Unlock()
}

// Parallel senders and joiners share the room maps. This is the case
// the race detector watches.
func TestHubConcurrentRoomTraffic(t *testing.T) {
	hub := NewHub()
	rideID := primitive.NewObjectID()

	clients := make([]*Client, 8)
	var drainers sync.WaitGroup
	for i := range clients {
		c := newTestClient(4)
		hub.registerClient(c)
		hub.JoinRide(c, rideID)
		clients[i] = c

		drainers.Add(1)
		go func(c *Client) {
			defer drainers.Done()
			for range c.send {
			}
		}(c)
	}

	var senders sync.WaitGroup
	for i := 0; i < 4; i++ {
		senders.Add(1)
		go func() {
			defer senders.Done()
			for j := 0; j < 50; j++ {
				hub.SendRideMessage(rideID, Message{Type: "chat_message"})
			}
		}()
	}
	senders.Wait()

	for _, c := range clients {
		hub.mutex.Lock()
		hub.evictClient(c)
		hub.mutex.Unlock()
	}
	drainers.Wait()
}
