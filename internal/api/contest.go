package api

import (
	"net/http"

	"mediverse/internal/contest"

	"github.com/gin-gonic/gin"
)

type ContestHandlers struct {
	contests *contest.ContestService
}

func NewContestHandlers(contests *contest.ContestService) *ContestHandlers {
	return &ContestHandlers{contests: contests}
}

// ListContestsHandler returns upcoming contests across platforms
// @Summary List upcoming contests
// @Tags Contests
// @Produce json
// @Success 200 {object} map[string][]contest.Contest
// @Failure 502 {object} ErrorResponse "Aggregator upstream failed"
// @Router /api/contests [get]
func (h *ContestHandlers) ListContestsHandler(c *gin.Context) {
	contests, err := h.contests.Upcoming()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch contests"})
		return
	}

	c.JSON(200, gin.H{"contests": contests})
}
