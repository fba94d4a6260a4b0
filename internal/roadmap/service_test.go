package roadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediverse/internal/ai"
	"mediverse/internal/storage"

	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := storage.Connect(":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func fakeModel(t *testing.T, handler http.HandlerFunc) *ai.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := ai.NewClient("test-key")
	client.BaseURL = server.URL
	return client
}

func modelReply(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestGenerate(t *testing.T) {
	t.Run("returns the model's roadmap", func(t *testing.T) {
		var prompt string
		client := fakeModel(t, func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Contents []struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"contents"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			prompt = body.Contents[0].Parts[0].Text
			fmt.Fprint(w, modelReply("Stage 1: basics"))
		})
		s := NewRoadmapService(testDB(t), client)

		text, err := s.Generate(context.Background(), "distributed systems")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if text != "Stage 1: basics" {
			t.Errorf("Expected model text back, got: %v", text)
		}
		if !strings.Contains(prompt, "distributed systems") {
			t.Errorf("Expected topic in the prompt, got: %v", prompt)
		}
	})

	t.Run("empty topic", func(t *testing.T) {
		s := NewRoadmapService(testDB(t), ai.NewClient("test-key"))
		if _, err := s.Generate(context.Background(), ""); err != ErrMissingTopic {
			t.Errorf("Expected ErrMissingTopic, got: %v", err)
		}
	})

	t.Run("model failure", func(t *testing.T) {
		client := fakeModel(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		s := NewRoadmapService(testDB(t), client)

		if _, err := s.Generate(context.Background(), "go"); err == nil {
			t.Error("Expected an error when the model call fails")
		}
	})
}

func TestSaveAndGetMine(t *testing.T) {
	s := NewRoadmapService(testDB(t), ai.NewClient("test-key"))

	saved, err := s.Save("user-1", "go", "Stage 1: syntax")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("Expected an id on the saved roadmap")
	}

	t.Run("owner can fetch", func(t *testing.T) {
		found, err := s.GetMine("user-1", saved.ID)
		if err != nil {
			t.Fatalf("GetMine failed: %v", err)
		}
		if found.Roadmap != "Stage 1: syntax" {
			t.Errorf("Expected saved content, got: %v", found.Roadmap)
		}
	})

	t.Run("other users cannot", func(t *testing.T) {
		if _, err := s.GetMine("user-2", saved.ID); err != ErrNotFound {
			t.Errorf("Expected ErrNotFound for a non-owner, got: %v", err)
		}
	})

	t.Run("listing is owner scoped", func(t *testing.T) {
		if _, err := s.Save("user-2", "rust", "Stage 1: borrowing"); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		mine, err := s.ListMine("user-1")
		if err != nil {
			t.Fatalf("ListMine failed: %v", err)
		}
		if len(mine) != 1 || mine[0].Topic != "go" {
			t.Errorf("Expected only user-1's roadmaps, got: %v", mine)
		}
	})

	t.Run("empty fields rejected", func(t *testing.T) {
		if _, err := s.Save("user-1", "", "text"); err == nil {
			t.Error("Expected an error for an empty topic")
		}
		if _, err := s.Save("user-1", "topic", ""); err == nil {
			t.Error("Expected an error for empty roadmap text")
		}
	})
}
