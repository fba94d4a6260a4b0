package forum

import (
	"errors"
	"strings"

	. "mediverse/pkg/mediverse"

	"gorm.io/gorm"
)

var (
	ErrThreadNotFound = errors.New("thread not found")
	ErrReplyNotFound  = errors.New("reply not found")
	ErrNotOwner       = errors.New("not the owner")
	ErrMissingFields  = errors.New("title and body are required")
	ErrEmptyReply     = errors.New("reply content cannot be empty")
)

type ForumService struct {
	db *gorm.DB
}

func NewForumService(db *gorm.DB) *ForumService {
	return &ForumService{db: db}
}

func (s *ForumService) CreateThread(userID, userName, title, body string, tags []string) (*Thread, error) {
	if title == "" || body == "" {
		return nil, ErrMissingFields
	}

	thread := Thread{
		Title:    title,
		Body:     body,
		Tags:     tags,
		UserID:   userID,
		UserName: userName,
		Upvotes:  []string{},
	}

	if err := s.db.Create(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (s *ForumService) GetAllThreads() ([]Thread, error) {
	var threads []Thread
	err := s.db.Order("created_at DESC").Find(&threads).Error
	return threads, err
}

func (s *ForumService) GetThread(threadID string) (*Thread, error) {
	var thread Thread
	if err := s.db.First(&thread, "id = ?", threadID).Error; err != nil {
		return nil, ErrThreadNotFound
	}
	return &thread, nil
}

// DeleteThread removes the thread and every reply linked to it.
func (s *ForumService) DeleteThread(userID, threadID string) error {
	thread, err := s.GetThread(threadID)
	if err != nil {
		return err
	}
	if thread.UserID != userID {
		return ErrNotOwner
	}

	if err := s.db.Where("thread_id = ?", threadID).Delete(&Reply{}).Error; err != nil {
		return err
	}
	return s.db.Delete(thread).Error
}

// ToggleThreadUpvote flips the caller's upvote and returns the updated thread.
func (s *ForumService) ToggleThreadUpvote(userID, threadID string) (*Thread, error) {
	thread, err := s.GetThread(threadID)
	if err != nil {
		return nil, err
	}

	thread.Upvotes = toggle(thread.Upvotes, userID)
	if err := s.db.Save(thread).Error; err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *ForumService) CreateReply(userID, userName, threadID, content string) (*Reply, error) {
	if _, err := s.GetThread(threadID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyReply
	}

	reply := Reply{
		ThreadID: threadID,
		UserID:   userID,
		UserName: userName,
		Content:  content,
		Upvotes:  []string{},
	}

	if err := s.db.Create(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *ForumService) GetReplies(threadID string) ([]Reply, error) {
	var replies []Reply
	err := s.db.Where("thread_id = ?", threadID).Order("created_at DESC").Find(&replies).Error
	return replies, err
}

// DeleteReply is restricted to the reply's author. Returns the deleted reply
// so the handler knows which room to notify.
func (s *ForumService) DeleteReply(userID, replyID string) (*Reply, error) {
	var reply Reply
	if err := s.db.First(&reply, "id = ?", replyID).Error; err != nil {
		return nil, ErrReplyNotFound
	}
	if reply.UserID != userID {
		return nil, ErrNotOwner
	}

	if err := s.db.Delete(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *ForumService) ToggleReplyUpvote(userID, replyID string) (*Reply, error) {
	var reply Reply
	if err := s.db.First(&reply, "id = ?", replyID).Error; err != nil {
		return nil, ErrReplyNotFound
	}

	reply.Upvotes = toggle(reply.Upvotes, userID)
	if err := s.db.Save(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func toggle(ids []string, userID string) []string {
	out := make([]string, 0, len(ids)+1)
	present := false
	for _, id := range ids {
		if id == userID {
			present = true
			continue
		}
		out = append(out, id)
	}
	if !present {
		out = append(out, userID)
	}
	return out
}
