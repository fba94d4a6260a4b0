package api

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"mediverse/internal/hub"
	"mediverse/internal/post"

	"github.com/gin-gonic/gin"
	nanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

type PostHandlers struct {
	posts     *post.PostService
	hub       *hub.Hub
	uploadDir string
}

func NewPostHandlers(db *gorm.DB, h *hub.Hub, uploadDir string) *PostHandlers {
	return &PostHandlers{
		posts:     post.NewPostService(db),
		hub:       h,
		uploadDir: uploadDir,
	}
}

// saveFeaturedImage stores an uploaded image under the upload dir with a
// random prefix and returns its relative path.
func (h *PostHandlers) saveFeaturedImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("featuredImage")
	if err != nil {
		return "", nil // no image attached
	}

	name := nanoid.Must(10) + "_" + filepath.Base(file.Filename)
	path := filepath.Join(h.uploadDir, name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", err
	}
	return path, nil
}

func (h *PostHandlers) removeImage(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		log.Printf("failed to remove image %s: %v", path, err)
	}
}

// CreatePostHandler creates a blog post
// @Summary Create a post
// @Tags Posts
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Success 201 {object} mediverse.Post
// @Failure 400 {object} ErrorResponse "Missing fields or duplicate slug"
// @Router /api/posts [post]
func (h *PostHandlers) CreatePostHandler(c *gin.Context) {
	image, err := h.saveFeaturedImage(c)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to store featured image"})
		return
	}

	created, err := h.posts.Create(
		c.GetString("user_id"),
		c.GetString("username"),
		c.PostForm("title"),
		c.PostForm("slug"),
		c.PostForm("content"),
		c.PostForm("status"),
		image,
	)
	if err != nil {
		h.removeImage(image)
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	// The event goes out only after the row is committed; a failed create
	// never produces a phantom notification.
	h.hub.Emit(hub.EventNewPost, created)

	c.JSON(201, created)
}

// UpdatePostHandler updates the caller's post
// @Summary Update a post
// @Tags Posts
// @Router /api/posts/{id} [put]
func (h *PostHandlers) UpdatePostHandler(c *gin.Context) {
	var in post.UpdateInput
	if v, ok := c.GetPostForm("title"); ok {
		in.Title = &v
	}
	if v, ok := c.GetPostForm("slug"); ok {
		in.Slug = &v
	}
	if v, ok := c.GetPostForm("content"); ok {
		in.Content = &v
	}
	if v, ok := c.GetPostForm("status"); ok {
		in.Status = &v
	}

	image, err := h.saveFeaturedImage(c)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to store featured image"})
		return
	}
	if image != "" {
		in.FeaturedImage = &image
	}

	updated, oldImage, err := h.posts.Update(c.GetString("user_id"), c.Param("id"), in)
	if err != nil {
		h.removeImage(image)
		respondPostError(c, err)
		return
	}
	h.removeImage(oldImage)

	c.JSON(200, updated)
}

// DeletePostHandler deletes the caller's post
// @Summary Delete a post
// @Tags Posts
// @Router /api/posts/{id} [delete]
func (h *PostHandlers) DeletePostHandler(c *gin.Context) {
	deleted, err := h.posts.Delete(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondPostError(c, err)
		return
	}
	h.removeImage(deleted.FeaturedImage)

	c.JSON(200, gin.H{"message": "Post deleted successfully"})
}

// GetAllPostsHandler lists posts, newest first
// @Summary List posts
// @Tags Posts
// @Produce json
// @Router /api/posts [get]
func (h *PostHandlers) GetAllPostsHandler(c *gin.Context) {
	posts, err := h.posts.GetAll()
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(200, posts)
}

// GetPostBySlugHandler fetches one post by slug
// @Summary Get a post by slug
// @Tags Posts
// @Produce json
// @Router /api/posts/slug/{slug} [get]
func (h *PostHandlers) GetPostBySlugHandler(c *gin.Context) {
	found, err := h.posts.GetBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(404, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(200, found)
}

// ToggleLikeHandler flips the caller's like on a post
// @Summary Toggle a like
// @Tags Posts
// @Router /api/posts/{id}/like [post]
func (h *PostHandlers) ToggleLikeHandler(c *gin.Context) {
	likes, liked, err := h.posts.ToggleLike(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondPostError(c, err)
		return
	}

	c.JSON(200, gin.H{"likes": likes, "likedByUser": liked})
}

// GetCommentsHandler lists a post's comments
// @Summary List comments
// @Tags Posts
// @Router /api/posts/{id}/comments [get]
func (h *PostHandlers) GetCommentsHandler(c *gin.Context) {
	comments, err := h.posts.GetComments(c.Param("id"))
	if err != nil {
		respondPostError(c, err)
		return
	}

	c.JSON(200, comments)
}

type CommentInput struct {
	Text string `json:"text" binding:"required"`
}

// AddCommentHandler adds a comment and notifies the post's viewers
// @Summary Add a comment
// @Tags Posts
// @Router /api/posts/{id}/comments [post]
func (h *PostHandlers) AddCommentHandler(c *gin.Context) {
	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	postID := c.Param("id")
	comment, err := h.posts.AddComment(postID, c.GetString("user_id"), c.GetString("username"), input.Text)
	if err != nil {
		respondPostError(c, err)
		return
	}

	h.hub.EmitToRoom(postID, hub.EventReceiveComment, comment)

	c.JSON(201, gin.H{"message": "Comment added", "comment": comment})
}

// DeleteCommentHandler removes a comment (post owner or comment author)
// @Summary Delete a comment
// @Tags Posts
// @Router /api/posts/{id}/comments/{commentId} [delete]
func (h *PostHandlers) DeleteCommentHandler(c *gin.Context) {
	postID := c.Param("id")
	commentID := c.Param("commentId")

	if err := h.posts.DeleteComment(postID, commentID, c.GetString("user_id")); err != nil {
		respondPostError(c, err)
		return
	}

	h.hub.EmitToRoom(postID, hub.EventDeleteComment, commentID)

	c.JSON(200, gin.H{"message": "Comment deleted successfully"})
}

func respondPostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, post.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	case errors.Is(err, post.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
	case errors.Is(err, post.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, post.ErrSlugTaken), errors.Is(err, post.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
