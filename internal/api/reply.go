package api

import (
	"mediverse/internal/forum"
	"mediverse/internal/hub"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReplyHandlers struct {
	forum *forum.ForumService
	hub   *hub.Hub
}

func NewReplyHandlers(db *gorm.DB, h *hub.Hub) *ReplyHandlers {
	return &ReplyHandlers{
		forum: forum.NewForumService(db),
		hub:   h,
	}
}

// DeleteReplyHandler deletes the caller's reply and notifies the thread room
// @Summary Delete a reply
// @Tags Forum
// @Router /api/replies/{id} [delete]
func (h *ReplyHandlers) DeleteReplyHandler(c *gin.Context) {
	reply, err := h.forum.DeleteReply(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondForumError(c, err)
		return
	}

	h.hub.EmitToRoom(reply.ThreadID, hub.EventDeleteReply, reply.ID)

	c.JSON(200, gin.H{"message": "Reply deleted successfully"})
}

// ToggleReplyUpvoteHandler flips the caller's upvote on a reply
// @Summary Toggle a reply upvote
// @Tags Forum
// @Router /api/replies/{id}/upvote [patch]
func (h *ReplyHandlers) ToggleReplyUpvoteHandler(c *gin.Context) {
	reply, err := h.forum.ToggleReplyUpvote(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondForumError(c, err)
		return
	}

	h.hub.EmitToRoom(reply.ThreadID, hub.EventUpdateReplyUpvotes, gin.H{
		"replyId": reply.ID,
		"upvotes": len(reply.Upvotes),
	})

	c.JSON(200, gin.H{"upvotes": len(reply.Upvotes)})
}
