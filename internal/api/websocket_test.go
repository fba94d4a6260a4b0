package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mediverse/internal/hub"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// dialWS opens a websocket connection against a running test server,
// carrying the given session cookie.
func dialWS(t *testing.T, server *httptest.Server, cookie *http.Cookie) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{}
	header.Set("Cookie", cookie.String())

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) hub.Event {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read websocket message: %v", err)
	}

	var ev hub.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	return ev
}

func TestWebSocket_RejectsUnauthenticatedHandshake(t *testing.T) {
	router, _, _ := setupRouter(t)

	t.Run("no cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/ws", nil)
		router.ServeHTTP(w, req)

		if w.Code != 401 {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/ws", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-jwt"})
		router.ServeHTTP(w, req)

		if w.Code != 401 {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestWebSocket_AuthenticatedClientReceivesGlobalEvents(t *testing.T) {
	router, _, h := setupRouter(t)
	userID := registerUser(t, router, "listener", "listener@example.com")

	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWS(t, server, authCookie(t, userID, "listener"))

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, 10*time.Millisecond, "client never registered")

	h.Emit(hub.EventNewPost, map[string]string{"title": "hello"})

	ev := readEvent(t, conn)
	require.Equal(t, hub.EventNewPost, ev.Type)
	require.Equal(t, hub.RoomGlobal, ev.Room)

	payload := ev.Payload.(map[string]interface{})
	require.Equal(t, "hello", payload["title"])
}

func TestWebSocket_JoinThreadScopesDelivery(t *testing.T) {
	router, _, h := setupRouter(t)
	memberID := registerUser(t, router, "member", "member@example.com")
	outsiderID := registerUser(t, router, "outsider", "outsider@example.com")

	server := httptest.NewServer(router)
	defer server.Close()

	member := dialWS(t, server, authCookie(t, memberID, "member"))
	outsider := dialWS(t, server, authCookie(t, outsiderID, "outsider"))

	require.Eventually(t, func() bool {
		return h.ClientCount() == 2
	}, time.Second, 10*time.Millisecond)

	const threadID = "thread-abc"
	err := member.WriteJSON(map[string]string{"type": "join-thread", "threadId": threadID})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return h.RoomMemberCount(threadID) == 1
	}, time.Second, 10*time.Millisecond, "join-thread never took effect")

	h.EmitToRoom(threadID, hub.EventReceiveReply, map[string]string{"text": "scoped"})
	// The global event behind it proves the outsider was skipped, not slow.
	h.Emit(hub.EventNewThread, map[string]string{"title": "fence"})

	ev := readEvent(t, member)
	require.Equal(t, hub.EventReceiveReply, ev.Type)
	require.Equal(t, threadID, ev.Room)

	ev = readEvent(t, outsider)
	require.Equal(t, hub.EventNewThread, ev.Type)
}

func TestWebSocket_LeaveThreadStopsDelivery(t *testing.T) {
	router, _, h := setupRouter(t)
	userID := registerUser(t, router, "leaver", "leaver@example.com")

	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWS(t, server, authCookie(t, userID, "leaver"))
	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	const threadID = "thread-xyz"
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "join-thread", "threadId": threadID}))
	require.Eventually(t, func() bool {
		return h.RoomMemberCount(threadID) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "leave-thread", "threadId": threadID}))
	require.Eventually(t, func() bool {
		return h.RoomMemberCount(threadID) == 0
	}, time.Second, 10*time.Millisecond)

	h.EmitToRoom(threadID, hub.EventReceiveReply, map[string]string{"text": "missed"})
	h.Emit(hub.EventNewThread, map[string]string{"title": "fence"})

	ev := readEvent(t, conn)
	require.Equal(t, hub.EventNewThread, ev.Type)
}

func TestWebSocket_DisconnectDropsCount(t *testing.T) {
	router, _, h := setupRouter(t)
	userID := registerUser(t, router, "dropper", "dropper@example.com")

	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWS(t, server, authCookie(t, userID, "dropper"))
	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, time.Second, 10*time.Millisecond, "disconnect never cleaned up")
}

func TestWebSocket_CommentEmitsToPostRoom(t *testing.T) {
	router, _, h := setupRouter(t)
	authorID := registerUser(t, router, "author", "author@example.com")
	readerID := registerUser(t, router, "reader", "reader@example.com")
	authorCookie := authCookie(t, authorID, "author")

	created := createPost(t, router, authorCookie, "Live Post", "", "watch this")
	postID := created["id"].(string)

	server := httptest.NewServer(router)
	defer server.Close()

	reader := dialWS(t, server, authCookie(t, readerID, "reader"))
	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, reader.WriteJSON(map[string]string{"type": "join-thread", "threadId": postID}))
	require.Eventually(t, func() bool {
		return h.RoomMemberCount(postID) == 1
	}, time.Second, 10*time.Millisecond)

	body := strings.NewReader(`{"text":"first!"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/posts/"+postID+"/comments", body)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(authorCookie)
	router.ServeHTTP(w, req)
	require.Equal(t, 201, w.Code, w.Body.String())

	ev := readEvent(t, reader)
	require.Equal(t, hub.EventReceiveComment, ev.Type)
	require.Equal(t, postID, ev.Room)

	comment := ev.Payload.(map[string]interface{})
	require.Equal(t, "first!", comment["text"])
}
