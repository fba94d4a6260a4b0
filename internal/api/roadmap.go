package api

import (
	"errors"
	"net/http"

	"mediverse/internal/ai"
	"mediverse/internal/roadmap"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RoadmapHandlers struct {
	roadmaps *roadmap.RoadmapService
}

func NewRoadmapHandlers(db *gorm.DB, aiClient *ai.Client) *RoadmapHandlers {
	return &RoadmapHandlers{
		roadmaps: roadmap.NewRoadmapService(db, aiClient),
	}
}

type GenerateRoadmapInput struct {
	Topic string `json:"topic" binding:"required"`
}

// GenerateRoadmapHandler asks the model for a learning roadmap
// @Summary Generate a roadmap
// @Tags Roadmap
// @Accept json
// @Produce json
// @Param request body GenerateRoadmapInput true "Topic"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse "Topic is required"
// @Failure 502 {object} ErrorResponse "Model call failed"
// @Router /api/roadmap/generate [post]
func (h *RoadmapHandlers) GenerateRoadmapHandler(c *gin.Context) {
	var input GenerateRoadmapInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Topic is required"})
		return
	}

	text, err := h.roadmaps.Generate(c.Request.Context(), input.Topic)
	if err != nil {
		if errors.Is(err, roadmap.ErrMissingTopic) {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate roadmap"})
		return
	}

	c.JSON(200, gin.H{"roadmap": text})
}

type SaveRoadmapInput struct {
	Topic   string `json:"topic" binding:"required"`
	Roadmap string `json:"roadmap" binding:"required"`
}

// SaveRoadmapHandler persists a generated roadmap for the caller
// @Summary Save a roadmap
// @Tags Roadmap
// @Router /api/roadmap/save [post]
func (h *RoadmapHandlers) SaveRoadmapHandler(c *gin.Context) {
	var input SaveRoadmapInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Topic and roadmap are required"})
		return
	}

	saved, err := h.roadmaps.Save(c.GetString("user_id"), input.Topic, input.Roadmap)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to save roadmap"})
		return
	}

	c.JSON(200, gin.H{"message": "Roadmap saved successfully", "roadmap": saved})
}

// GetMyRoadmapsHandler lists the caller's saved roadmaps
// @Summary List own roadmaps
// @Tags Roadmap
// @Router /api/roadmap/my [get]
func (h *RoadmapHandlers) GetMyRoadmapsHandler(c *gin.Context) {
	roadmaps, err := h.roadmaps.ListMine(c.GetString("user_id"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to fetch roadmaps"})
		return
	}

	c.JSON(200, roadmaps)
}

// GetRoadmapByIDHandler fetches one of the caller's roadmaps
// @Summary Get a roadmap
// @Tags Roadmap
// @Router /api/roadmap/{id} [get]
func (h *RoadmapHandlers) GetRoadmapByIDHandler(c *gin.Context) {
	found, err := h.roadmaps.GetMine(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		c.JSON(404, gin.H{"error": "Roadmap not found"})
		return
	}

	c.JSON(200, found)
}
