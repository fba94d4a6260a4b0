package api

import (
	"errors"
	"net/http"

	"mediverse/internal/forum"
	"mediverse/internal/hub"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ThreadHandlers struct {
	forum *forum.ForumService
	hub   *hub.Hub
}

func NewThreadHandlers(db *gorm.DB, h *hub.Hub) *ThreadHandlers {
	return &ThreadHandlers{
		forum: forum.NewForumService(db),
		hub:   h,
	}
}

type ThreadInput struct {
	Title string   `json:"title" binding:"required"`
	Body  string   `json:"body" binding:"required"`
	Tags  []string `json:"tags"`
}

// CreateThreadHandler opens a forum thread
// @Summary Create a thread
// @Tags Forum
// @Accept json
// @Produce json
// @Param request body ThreadInput true "Thread"
// @Success 201 {object} mediverse.Thread
// @Failure 400 {object} ErrorResponse
// @Router /api/threads [post]
func (h *ThreadHandlers) CreateThreadHandler(c *gin.Context) {
	var input ThreadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Title and body are required"})
		return
	}

	thread, err := h.forum.CreateThread(
		c.GetString("user_id"),
		c.GetString("username"),
		input.Title,
		input.Body,
		input.Tags,
	)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	h.hub.Emit(hub.EventNewThread, thread)

	c.JSON(201, thread)
}

// GetAllThreadsHandler lists threads, newest first
// @Summary List threads
// @Tags Forum
// @Router /api/threads [get]
func (h *ThreadHandlers) GetAllThreadsHandler(c *gin.Context) {
	threads, err := h.forum.GetAllThreads()
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to fetch threads"})
		return
	}

	c.JSON(200, threads)
}

// GetThreadHandler fetches a single thread
// @Summary Get a thread
// @Tags Forum
// @Router /api/threads/{id} [get]
func (h *ThreadHandlers) GetThreadHandler(c *gin.Context) {
	thread, err := h.forum.GetThread(c.Param("id"))
	if err != nil {
		c.JSON(404, gin.H{"error": "Thread not found"})
		return
	}

	c.JSON(200, thread)
}

// DeleteThreadHandler deletes the caller's thread and all its replies
// @Summary Delete a thread
// @Tags Forum
// @Router /api/threads/{id} [delete]
func (h *ThreadHandlers) DeleteThreadHandler(c *gin.Context) {
	if err := h.forum.DeleteThread(c.GetString("user_id"), c.Param("id")); err != nil {
		respondForumError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Thread and its replies deleted successfully"})
}

// ToggleUpvoteHandler flips the caller's upvote and broadcasts the new tally
// @Summary Toggle a thread upvote
// @Tags Forum
// @Router /api/threads/{id}/upvote [patch]
func (h *ThreadHandlers) ToggleUpvoteHandler(c *gin.Context) {
	thread, err := h.forum.ToggleThreadUpvote(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondForumError(c, err)
		return
	}

	h.hub.Emit(hub.EventThreadUpvote, thread)

	c.JSON(200, thread)
}

type ReplyInput struct {
	Content string `json:"content" binding:"required"`
}

// CreateReplyHandler posts a reply and notifies the thread's viewers
// @Summary Reply to a thread
// @Tags Forum
// @Router /api/threads/{id}/replies [post]
func (h *ThreadHandlers) CreateReplyHandler(c *gin.Context) {
	var input ReplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Reply content cannot be empty"})
		return
	}

	threadID := c.Param("id")
	reply, err := h.forum.CreateReply(c.GetString("user_id"), c.GetString("username"), threadID, input.Content)
	if err != nil {
		respondForumError(c, err)
		return
	}

	h.hub.EmitToRoom(threadID, hub.EventReceiveReply, reply)

	c.JSON(201, reply)
}

// GetRepliesHandler lists a thread's replies
// @Summary List replies
// @Tags Forum
// @Router /api/threads/{id}/replies [get]
func (h *ThreadHandlers) GetRepliesHandler(c *gin.Context) {
	if _, err := h.forum.GetThread(c.Param("id")); err != nil {
		c.JSON(404, gin.H{"error": "Thread not found"})
		return
	}

	replies, err := h.forum.GetReplies(c.Param("id"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to fetch replies"})
		return
	}

	c.JSON(200, replies)
}

func respondForumError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, forum.ErrThreadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
	case errors.Is(err, forum.ErrReplyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Reply not found"})
	case errors.Is(err, forum.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, forum.ErrEmptyReply), errors.Is(err, forum.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
