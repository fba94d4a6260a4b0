package api

import (
	"errors"
	"io"
	"net/http"

	"mediverse/internal/ai"
	"mediverse/internal/resume"

	"github.com/gin-gonic/gin"
)

// Resume uploads are processed in memory and never written to disk.
const maxResumeSize = 10 << 20 // 10 MiB

type ResumeHandlers struct {
	resumes *resume.ResumeService
}

func NewResumeHandlers(aiClient *ai.Client) *ResumeHandlers {
	return &ResumeHandlers{
		resumes: resume.NewResumeService(aiClient),
	}
}

// AnalyzeResumeHandler extracts the uploaded resume's text and returns the
// model's structured review
// @Summary Analyze a resume
// @Tags Resume
// @Accept mpfd
// @Produce json
// @Param resume formData file true "Resume (PDF or DOCX)"
// @Success 200 {object} resume.Analysis
// @Failure 400 {object} ErrorResponse "No file, unsupported format, or no text"
// @Failure 502 {object} ErrorResponse "Model call failed"
// @Router /api/resume/analyze [post]
func (h *ResumeHandlers) AnalyzeResumeHandler(c *gin.Context) {
	file, err := c.FormFile("resume")
	if err != nil {
		c.JSON(400, gin.H{"error": "No file uploaded"})
		return
	}
	if file.Size > maxResumeSize {
		c.JSON(400, gin.H{"error": "File too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to read upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to read upload"})
		return
	}

	analysis, err := h.resumes.Analyze(c.Request.Context(), file.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, resume.ErrUnsupportedFormat), errors.Is(err, resume.ErrNoText):
			c.JSON(400, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to analyze resume"})
		}
		return
	}

	c.JSON(200, analysis)
}
