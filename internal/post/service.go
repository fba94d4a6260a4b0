package post

import (
	"errors"
	"regexp"
	"strings"

	. "mediverse/pkg/mediverse"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("post not found")
	ErrNotOwner      = errors.New("not the owner of this post")
	ErrSlugTaken     = errors.New("slug already exists")
	ErrMissingFields = errors.New("missing required fields")
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the title and collapses everything non-alphanumeric into
// single dashes.
func Slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

func (s *PostService) Create(userID, userName, title, slug, content, status, featuredImage string) (*Post, error) {
	if slug == "" {
		slug = Slugify(title)
	}
	if title == "" || slug == "" || content == "" {
		return nil, ErrMissingFields
	}

	var existing Post
	if err := s.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return nil, ErrSlugTaken
	}

	if status == "" {
		status = "active"
	}

	post := Post{
		Title:         title,
		Slug:          slug,
		Content:       content,
		Status:        status,
		UserID:        userID,
		UserName:      userName,
		FeaturedImage: featuredImage,
		Likes:         []string{},
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

type UpdateInput struct {
	Title         *string
	Slug          *string
	Content       *string
	Status        *string
	FeaturedImage *string
}

// Update changes only the fields the caller sent. Returns the updated post and
// the previous featured image path so the handler can remove the stale file.
func (s *PostService) Update(userID, postID string, in UpdateInput) (*Post, string, error) {
	var post Post
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		return nil, "", ErrNotFound
	}
	if post.UserID != userID {
		return nil, "", ErrNotOwner
	}

	oldImage := ""
	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Slug != nil {
		post.Slug = *in.Slug
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Status != nil {
		post.Status = *in.Status
	}
	if in.FeaturedImage != nil {
		oldImage = post.FeaturedImage
		post.FeaturedImage = *in.FeaturedImage
	}

	if err := s.db.Save(&post).Error; err != nil {
		return nil, "", err
	}
	return &post, oldImage, nil
}

func (s *PostService) Delete(userID, postID string) (*Post, error) {
	var post Post
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		return nil, ErrNotFound
	}
	if post.UserID != userID {
		return nil, ErrNotOwner
	}

	if err := s.db.Where("post_id = ?", postID).Delete(&Comment{}).Error; err != nil {
		return nil, err
	}
	if err := s.db.Delete(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) GetAll() ([]Post, error) {
	var posts []Post
	err := s.db.Preload("Comments").Order("created_at DESC").Find(&posts).Error
	return posts, err
}

func (s *PostService) GetBySlug(slug string) (*Post, error) {
	var post Post
	if err := s.db.Preload("Comments").Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (s *PostService) GetByID(postID string) (*Post, error) {
	var post Post
	if err := s.db.Preload("Comments").First(&post, "id = ?", postID).Error; err != nil {
		return nil, ErrNotFound
	}
	return &post, nil
}

// ToggleLike adds the user to the post's like set, or removes them if already
// present. Returns the resulting count and whether the user now likes it.
func (s *PostService) ToggleLike(userID, postID string) (int, bool, error) {
	var post Post
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		return 0, false, ErrNotFound
	}

	liked := true
	likes := make([]string, 0, len(post.Likes)+1)
	for _, id := range post.Likes {
		if id == userID {
			liked = false
			continue
		}
		likes = append(likes, id)
	}
	if liked {
		likes = append(likes, userID)
	}
	post.Likes = likes

	if err := s.db.Save(&post).Error; err != nil {
		return 0, false, err
	}
	return len(post.Likes), liked, nil
}

func (s *PostService) GetComments(postID string) ([]Comment, error) {
	if _, err := s.GetByID(postID); err != nil {
		return nil, err
	}

	var comments []Comment
	err := s.db.Where("post_id = ?", postID).Order("created_at DESC").Find(&comments).Error
	return comments, err
}

func (s *PostService) AddComment(postID, userID, userName, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrMissingFields
	}

	var post Post
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		return nil, ErrNotFound
	}

	comment := Comment{
		PostID:   postID,
		UserID:   userID,
		UserName: userName,
		Text:     text,
	}

	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

var ErrCommentNotFound = errors.New("comment not found")

// DeleteComment is allowed for the post owner and for the comment's author.
func (s *PostService) DeleteComment(postID, commentID, userID string) error {
	var post Post
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		return ErrNotFound
	}

	var comment Comment
	if err := s.db.Where("id = ? AND post_id = ?", commentID, postID).First(&comment).Error; err != nil {
		return ErrCommentNotFound
	}

	if post.UserID != userID && comment.UserID != userID {
		return ErrNotOwner
	}

	return s.db.Delete(&comment).Error
}

// DeleteAllByUser removes a user's posts and their comments, returning the
// image paths that are now orphaned. Used by account deletion.
func (s *PostService) DeleteAllByUser(userID string) ([]string, error) {
	var posts []Post
	if err := s.db.Where("user_id = ?", userID).Find(&posts).Error; err != nil {
		return nil, err
	}

	var images []string
	for _, p := range posts {
		if p.FeaturedImage != "" {
			images = append(images, p.FeaturedImage)
		}
		if err := s.db.Where("post_id = ?", p.ID).Delete(&Comment{}).Error; err != nil {
			return nil, err
		}
	}

	if err := s.db.Where("user_id = ?", userID).Delete(&Post{}).Error; err != nil {
		return nil, err
	}
	return images, nil
}
