package roadmap

import (
	"context"
	"errors"
	"fmt"

	"mediverse/internal/ai"
	. "mediverse/pkg/mediverse"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("roadmap not found")
	ErrMissingTopic = errors.New("topic is required")
)

const promptTemplate = `Create a modern, step-by-step roadmap for learning %s.
Format guidelines:
1. Use stage-wise sections with emojis.
2. For each stage, include:
   - Objective (1 short line)
   - Key Topics (bullet points only)
   - Suggested Resources (max 2 per stage)
3. Keep tone motivational and practical, not like a textbook.
4. Avoid long paragraphs, focus on short, crisp, actionable points.
5. The roadmap should feel like a personal mentor guide.`

type RoadmapService struct {
	db *gorm.DB
	ai *ai.Client
}

func NewRoadmapService(db *gorm.DB, aiClient *ai.Client) *RoadmapService {
	return &RoadmapService{db: db, ai: aiClient}
}

// Generate asks the model for a staged learning roadmap. Nothing is persisted
// until the caller explicitly saves it.
func (s *RoadmapService) Generate(ctx context.Context, topic string) (string, error) {
	if topic == "" {
		return "", ErrMissingTopic
	}
	return s.ai.Generate(ctx, fmt.Sprintf(promptTemplate, topic), 0.7, 900)
}

func (s *RoadmapService) Save(userID, topic, roadmapText string) (*Roadmap, error) {
	if topic == "" || roadmapText == "" {
		return nil, errors.New("topic and roadmap are required")
	}

	roadmap := Roadmap{
		UserID:  userID,
		Topic:   topic,
		Roadmap: roadmapText,
	}

	if err := s.db.Create(&roadmap).Error; err != nil {
		return nil, err
	}
	return &roadmap, nil
}

func (s *RoadmapService) ListMine(userID string) ([]Roadmap, error) {
	var roadmaps []Roadmap
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&roadmaps).Error
	return roadmaps, err
}

// GetMine fetches one roadmap, scoped to its owner: somebody else's id behaves
// exactly like an unknown one.
func (s *RoadmapService) GetMine(userID, roadmapID string) (*Roadmap, error) {
	var roadmap Roadmap
	err := s.db.Where("id = ? AND user_id = ?", roadmapID, userID).First(&roadmap).Error
	if err != nil {
		return nil, ErrNotFound
	}
	return &roadmap, nil
}
