package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
)

var (
	ErrNotRegistered   = errors.New("hub: connection is not registered")
	ErrUnauthenticated = errors.New("hub: connection is not authenticated")
	ErrEmptyRoomKey    = errors.New("hub: room key cannot be empty")
)

type frame struct {
	event Event
	// remote marks envelopes that arrived over the bridge, so they are not
	// published back out and echoed between instances forever.
	remote bool
}

// Hub fans domain events out to connected clients. Membership is mutated only
// here (register/join/leave/disconnect); producers go through Emit/EmitToRoom
// and never touch the member sets. All relays pass through a single channel,
// which is what gives per-room FIFO delivery.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	relay  chan frame
	bridge *Bridge
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
		relay:   make(chan frame, 256),
	}
}

// AttachBridge wires a cross-instance pub/sub bridge. Must be called before
// Run.
func (h *Hub) AttachBridge(b *Bridge) {
	h.bridge = b
}

// Run drains the relay channel until ctx is cancelled, then closes every
// connection. Exactly one Run goroutine may be active per hub.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case f := <-h.relay:
			h.deliver(f)
		}
	}
}

// Emit queues a global event for every connected client.
func (h *Hub) Emit(eventType EventType, payload any) {
	h.relay <- frame{event: Event{Type: eventType, Room: RoomGlobal, Payload: payload}}
}

// EmitToRoom queues an event for the current members of roomKey. An empty or
// unknown room is a no-op, not an error.
func (h *Hub) EmitToRoom(roomKey string, eventType EventType, payload any) {
	h.relay <- frame{event: Event{Type: eventType, Room: roomKey, Payload: payload}}
}

// relayRemote feeds an envelope received from another instance into the local
// fan-out.
func (h *Hub) relayRemote(ev Event) {
	h.relay <- frame{event: ev, remote: true}
}

// RegisterClient adds an authenticated connection. Handshake rejection happens
// upstream; a client without a principal is refused here as well.
func (h *Hub) RegisterClient(c *Client) error {
	if c == nil || c.userID == "" {
		return ErrUnauthenticated
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	return nil
}

// UnregisterClient removes the connection from the hub and from every room it
// joined, and closes its send channel. Safe to call more than once.
func (h *Hub) UnregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}
	delete(h.clients, c)

	for key, members := range h.rooms {
		if members[c] {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, key)
			}
		}
	}

	close(c.send)
}

// JoinRoom adds the connection to a room. Idempotent: joining a room twice is
// a single membership.
func (h *Hub) JoinRoom(c *Client, roomKey string) error {
	if roomKey == "" {
		return ErrEmptyRoomKey
	}
	if c == nil || c.userID == "" {
		return ErrUnauthenticated
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return ErrNotRegistered
	}

	members, ok := h.rooms[roomKey]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[roomKey] = members
	}
	members[c] = true
	return nil
}

// LeaveRoom removes the connection from a room. Empty rooms are deleted.
func (h *Hub) LeaveRoom(c *Client, roomKey string) error {
	if roomKey == "" {
		return ErrEmptyRoomKey
	}
	if c == nil || c.userID == "" {
		return ErrUnauthenticated
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomKey]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomKey)
		}
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomMemberCount(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey])
}

func (h *Hub) IsMember(c *Client, roomKey string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomKey][c]
}

// RoomCounts returns the member count per room key.
func (h *Hub) RoomCounts() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := make(map[string]int, len(h.rooms))
	for key, members := range h.rooms {
		counts[key] = len(members)
	}
	return counts
}

// deliver marshals the envelope once and pushes it to every recipient that is
// a member at this instant. Delivery is at-most-once: recipients whose send
// buffer is full are dropped, never retried.
func (h *Hub) deliver(f frame) {
	data, err := json.Marshal(f.event)
	if err != nil {
		log.Printf("hub: failed to encode %s event: %v", f.event.Type, err)
		return
	}

	if h.bridge != nil && !f.remote {
		h.bridge.Publish(context.Background(), f.event)
	}

	// Sends happen under the read lock: a channel is only ever closed by
	// UnregisterClient, which needs the write lock, so no send can race a
	// close. The sends never block thanks to the default branch.
	h.mu.RLock()
	var recipients map[*Client]bool
	if f.event.Room == RoomGlobal {
		recipients = h.clients
	} else {
		recipients = h.rooms[f.event.Room]
	}

	var slow []*Client
	for c := range recipients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("hub: dropping slow client %s", c.userID)
		h.UnregisterClient(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.rooms = make(map[string]map[*Client]bool)
}
