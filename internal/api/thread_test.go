package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func createThread(t *testing.T, router *gin.Engine, cookie *http.Cookie, title, body string, tags []string) map[string]interface{} {
	t.Helper()

	payload, _ := json.Marshal(ThreadInput{Title: title, Body: body, Tags: tags})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/threads", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	if w.Code != 201 {
		t.Fatalf("Failed to create thread: status %d: %s", w.Code, w.Body.String())
	}

	var thread map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &thread)
	return thread
}

func createReply(t *testing.T, router *gin.Engine, cookie *http.Cookie, threadID, content string) map[string]interface{} {
	t.Helper()

	payload, _ := json.Marshal(ReplyInput{Content: content})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/threads/"+threadID+"/replies", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	if w.Code != 201 {
		t.Fatalf("Failed to create reply: status %d: %s", w.Code, w.Body.String())
	}

	var reply map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &reply)
	return reply
}

func TestThreadHandlers_CreateThreadHandler(t *testing.T) {
	router, _, _ := setupRouter(t)
	userID := registerUser(t, router, "poster", "poster@example.com")
	cookie := authCookie(t, userID, "poster")

	t.Run("valid thread", func(t *testing.T) {
		thread := createThread(t, router, cookie, "How to prep for ICPC?", "Looking for a plan", []string{"cp", "icpc"})

		if thread["title"] != "How to prep for ICPC?" {
			t.Errorf("Expected title back, got: %v", thread["title"])
		}
		if thread["userName"] != "poster" {
			t.Errorf("Expected author name on thread, got: %v", thread["userName"])
		}
		tags := thread["tags"].([]interface{})
		if len(tags) != 2 || tags[0] != "cp" {
			t.Errorf("Expected tags to round-trip, got: %v", tags)
		}
	})

	t.Run("missing body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/threads", bytes.NewReader([]byte(`{"title":"no body"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		router.ServeHTTP(w, req)

		if w.Code != 400 {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/threads", bytes.NewReader([]byte(`{"title":"t","body":"b"}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != 401 {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestThreadHandlers_ToggleUpvote(t *testing.T) {
	router, _, _ := setupRouter(t)
	userID := registerUser(t, router, "voter", "voter@example.com")
	cookie := authCookie(t, userID, "voter")

	thread := createThread(t, router, cookie, "Vote on this", "please", nil)
	threadID := thread["id"].(string)

	upvote := func() map[string]interface{} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("PATCH", "/api/threads/"+threadID+"/upvote", nil)
		req.AddCookie(cookie)
		router.ServeHTTP(w, req)
		if w.Code != 200 {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var body map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &body)
		return body
	}

	first := upvote()
	if upvotes := first["upvotes"].([]interface{}); len(upvotes) != 1 {
		t.Errorf("Expected one upvote after first toggle, got: %v", upvotes)
	}

	second := upvote()
	if upvotes := second["upvotes"].([]interface{}); len(upvotes) != 0 {
		t.Errorf("Expected zero upvotes after second toggle, got: %v", upvotes)
	}
}

func TestThreadHandlers_Replies(t *testing.T) {
	router, _, _ := setupRouter(t)
	opID := registerUser(t, router, "op", "op@example.com")
	replierID := registerUser(t, router, "replier", "replier@example.com")
	opCookie := authCookie(t, opID, "op")
	replierCookie := authCookie(t, replierID, "replier")

	thread := createThread(t, router, opCookie, "Discuss", "topic", nil)
	threadID := thread["id"].(string)

	reply := createReply(t, router, replierCookie, threadID, "my two cents")
	replyID := reply["id"].(string)

	t.Run("list replies", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/threads/"+threadID+"/replies", nil)
		router.ServeHTTP(w, req)

		if w.Code != 200 {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var replies []map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &replies)
		if len(replies) != 1 || replies[0]["content"] != "my two cents" {
			t.Errorf("Expected one reply, got: %v", replies)
		}
	})

	t.Run("reply to missing thread", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/threads/nope/replies", bytes.NewReader([]byte(`{"content":"lost"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(replierCookie)
		router.ServeHTTP(w, req)

		if w.Code != 404 {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("reply upvote toggles", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("PATCH", "/api/replies/"+replyID+"/upvote", nil)
		req.AddCookie(opCookie)
		router.ServeHTTP(w, req)

		if w.Code != 200 {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var body map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &body)
		if body["upvotes"].(float64) != 1 {
			t.Errorf("Expected upvote count 1, got: %v", body["upvotes"])
		}
	})

	t.Run("only the author deletes a reply", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/api/replies/"+replyID, nil)
		req.AddCookie(opCookie)
		router.ServeHTTP(w, req)
		if w.Code != 403 {
			t.Errorf("Expected status 403 for thread owner, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		req = httptest.NewRequest("DELETE", "/api/replies/"+replyID, nil)
		req.AddCookie(replierCookie)
		router.ServeHTTP(w, req)
		if w.Code != 200 {
			t.Errorf("Expected status 200 for author, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestThreadHandlers_DeleteThreadCascades(t *testing.T) {
	router, _, _ := setupRouter(t)
	opID := registerUser(t, router, "op", "op@example.com")
	strangerID := registerUser(t, router, "stranger", "stranger@example.com")
	opCookie := authCookie(t, opID, "op")

	thread := createThread(t, router, opCookie, "Short lived", "bye", nil)
	threadID := thread["id"].(string)
	createReply(t, router, opCookie, threadID, "self reply")

	t.Run("stranger cannot delete", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/api/threads/"+threadID, nil)
		req.AddCookie(authCookie(t, strangerID, "stranger"))
		router.ServeHTTP(w, req)

		if w.Code != 403 {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})

	t.Run("owner delete removes thread and replies", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/api/threads/"+threadID, nil)
		req.AddCookie(opCookie)
		router.ServeHTTP(w, req)

		if w.Code != 200 {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		req = httptest.NewRequest("GET", "/api/threads/"+threadID, nil)
		router.ServeHTTP(w, req)
		if w.Code != 404 {
			t.Errorf("Expected thread to be gone, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		req = httptest.NewRequest("GET", "/api/threads/"+threadID+"/replies", nil)
		router.ServeHTTP(w, req)
		if w.Code != 404 {
			t.Errorf("Expected replies listing to 404 for deleted thread, got %d", w.Code)
		}
	})
}
