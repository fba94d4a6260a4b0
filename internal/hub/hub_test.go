package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func startHub(t *testing.T) *Hub {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()

	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed while waiting for delivery")
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("failed to decode delivered event: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
	return Event{}
}

func TestNewHub(t *testing.T) {
	h := NewHub()

	assert.NotNil(t, h)
	assert.NotNil(t, h.clients)
	assert.NotNil(t, h.rooms)
	assert.NotNil(t, h.relay)
}

func TestHub_RegisterClient(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "user123", "testuser")

	err := h.RegisterClient(client)

	assert.NoError(t, err)
	assert.Equal(t, 1, h.ClientCount())
}

func TestHub_RegisterClientUnauthenticated(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "", "")

	err := h.RegisterClient(client)

	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_JoinRoom(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(client)

	err := h.JoinRoom(client, "thread-42")

	assert.NoError(t, err)
	assert.True(t, h.IsMember(client, "thread-42"))
	assert.Equal(t, 1, h.RoomMemberCount("thread-42"))
}

func TestHub_JoinRoomIsIdempotent(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(client)

	assert.NoError(t, h.JoinRoom(client, "thread-42"))
	assert.NoError(t, h.JoinRoom(client, "thread-42"))
	assert.Equal(t, 1, h.RoomMemberCount("thread-42"))

	// A double join must not duplicate deliveries either.
	h.EmitToRoom("thread-42", EventReceiveReply, "hi")
	ev := receive(t, client)
	assert.Equal(t, EventReceiveReply, ev.Type)

	select {
	case data := <-client.send:
		t.Fatalf("unexpected second delivery: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_JoinRoomRejections(t *testing.T) {
	h := startHub(t)

	registered := NewClient(h, nil, "user1", "one")
	h.RegisterClient(registered)
	assert.ErrorIs(t, h.JoinRoom(registered, ""), ErrEmptyRoomKey)

	anonymous := NewClient(h, nil, "", "")
	assert.ErrorIs(t, h.JoinRoom(anonymous, "thread-42"), ErrUnauthenticated)
	assert.Equal(t, 0, h.RoomMemberCount("thread-42"))

	// Authenticated but never registered, e.g. already disconnected.
	ghost := NewClient(h, nil, "user2", "two")
	assert.ErrorIs(t, h.JoinRoom(ghost, "thread-42"), ErrNotRegistered)
	assert.Equal(t, 0, h.RoomMemberCount("thread-42"))
}

func TestHub_LeaveRoom(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(client)
	h.JoinRoom(client, "thread-42")

	err := h.LeaveRoom(client, "thread-42")

	assert.NoError(t, err)
	assert.False(t, h.IsMember(client, "thread-42"))
	// Empty rooms are garbage collected.
	assert.Equal(t, 0, len(h.RoomCounts()))
}

func TestHub_EmitToRoomReachesOnlyMembers(t *testing.T) {
	h := startHub(t)

	a := NewClient(h, nil, "userA", "a")
	b := NewClient(h, nil, "userB", "b")
	h.RegisterClient(a)
	h.RegisterClient(b)
	h.JoinRoom(a, "thread-42")

	h.EmitToRoom("thread-42", EventReceiveReply, map[string]string{"content": "hi"})
	// The follow-up global event acts as a fence: relays are FIFO, so if B's
	// first delivery is the global one, the room event skipped it.
	h.Emit(EventNewThread, "fence")

	evA := receive(t, a)
	assert.Equal(t, EventReceiveReply, evA.Type)
	assert.Equal(t, "thread-42", evA.Room)

	evB := receive(t, b)
	assert.Equal(t, EventNewThread, evB.Type)
}

func TestHub_EmitToEmptyRoomIsNoOp(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(client)

	h.EmitToRoom("thread-nobody", EventReceiveReply, "lost")
	h.Emit(EventNewPost, "fence")

	ev := receive(t, client)
	assert.Equal(t, EventNewPost, ev.Type)
}

func TestHub_GlobalEventsArriveInEmissionOrder(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(client)

	h.Emit(EventNewThread, "first")
	h.Emit(EventNewThread, "second")

	assert.Equal(t, "first", receive(t, client).Payload)
	assert.Equal(t, "second", receive(t, client).Payload)
}

func TestHub_DisconnectCleansUpMembership(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(client)
	h.JoinRoom(client, "thread-42")
	h.JoinRoom(client, "thread-43")

	h.UnregisterClient(client)

	assert.Equal(t, 0, h.ClientCount())
	assert.Equal(t, 0, h.RoomMemberCount("thread-42"))
	assert.Equal(t, 0, h.RoomMemberCount("thread-43"))

	// Delivery count after disconnect must be zero: the send channel is
	// closed and drained of nothing.
	h.EmitToRoom("thread-42", EventReceiveReply, "late")
	_, ok := <-client.send
	assert.False(t, ok)
}

func TestHub_UnregisterTwiceIsSafe(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(client)

	h.UnregisterClient(client)
	h.UnregisterClient(client)

	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_ReconnectDoesNotInheritMembership(t *testing.T) {
	h := startHub(t)

	first := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(first)
	h.JoinRoom(first, "thread-42")
	h.UnregisterClient(first)

	// Same user reconnects with a fresh connection: no ghost membership.
	second := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(second)

	h.EmitToRoom("thread-42", EventReceiveReply, "missed")
	h.Emit(EventNewPost, "fence")

	ev := receive(t, second)
	assert.Equal(t, EventNewPost, ev.Type)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	h := startHub(t)
	client := NewClient(h, nil, "user123", "testuser")
	h.RegisterClient(client)

	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("backlog")
	}

	h.Emit(EventNewPost, "overflow")

	assert.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}
