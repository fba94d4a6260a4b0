package mediverse

import (
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	TokenHash string `gorm:"not null"`
	ExpiresAt int64  `gorm:"not null"`
}

type Post struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	Content       string    `gorm:"not null" json:"content"`
	Status        string    `gorm:"default:active" json:"status"`
	FeaturedImage string    `json:"featuredImage"`
	UserID        string    `gorm:"index;not null" json:"userId"`
	UserName      string    `gorm:"not null" json:"userName"`
	Views         int       `gorm:"default:0" json:"views"`
	Likes         []string  `gorm:"serializer:json" json:"likes"`
	Comments      []Comment `gorm:"constraint:OnDelete:CASCADE" json:"comments"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	PostID    string    `gorm:"index;not null" json:"postId"`
	UserID    string    `gorm:"not null" json:"userId"`
	UserName  string    `gorm:"not null" json:"userName"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Thread struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"not null" json:"body"`
	Tags      []string  `gorm:"serializer:json" json:"tags"`
	UserID    string    `gorm:"index;not null" json:"userId"`
	UserName  string    `gorm:"not null" json:"userName"`
	Upvotes   []string  `gorm:"serializer:json" json:"upvotes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Reply struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ThreadID  string    `gorm:"index;not null" json:"threadId"`
	UserID    string    `gorm:"not null" json:"userId"`
	UserName  string    `json:"userName"`
	Content   string    `gorm:"not null" json:"content"`
	Upvotes   []string  `gorm:"serializer:json" json:"upvotes"`
	CreatedAt time.Time `json:"createdAt"`
}

type LeetcodeStats struct {
	Username    string `json:"username"`
	TotalSolved int    `json:"totalSolved"`
	Rating      int    `json:"rating"`
}

type CodeforcesStats struct {
	Handle    string `json:"handle"`
	Rating    int    `json:"rating"`
	MaxRating int    `json:"maxRating"`
}

type Profile struct {
	ID               uint            `gorm:"primaryKey" json:"-"`
	UserID           string          `gorm:"uniqueIndex;not null" json:"userId"`
	Batch            string          `json:"batch"`
	Department       string          `json:"department"`
	CGPA             float64         `json:"cgpa"`
	Skills           []string        `gorm:"serializer:json" json:"skills"`
	Interests        []string        `gorm:"serializer:json" json:"interests"`
	Achievements     []string        `gorm:"serializer:json" json:"achievements"`
	Certifications   []string        `gorm:"serializer:json" json:"certifications"`
	Hackathons       []string        `gorm:"serializer:json" json:"hackathons"`
	Publications     []string        `gorm:"serializer:json" json:"publications"`
	Extracurriculars []string        `gorm:"serializer:json" json:"extracurriculars"`
	Github           string          `json:"github"`
	Linkedin         string          `json:"linkedin"`
	Portfolio        string          `json:"portfolio"`
	Leetcode         LeetcodeStats   `gorm:"embedded;embeddedPrefix:leetcode_" json:"leetcode"`
	Codeforces       CodeforcesStats `gorm:"embedded;embeddedPrefix:codeforces_" json:"codeforces"`
	Avatar           string          `json:"avatar"`
	CoverImage       string          `json:"coverImage"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type Roadmap struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;not null" json:"userId"`
	Topic     string    `gorm:"not null" json:"topic"`
	Roadmap   string    `gorm:"not null" json:"roadmap"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID, err = nanoid.New(12)
	}
	return
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID, err = nanoid.New(12)
	}
	return
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID, err = nanoid.New(12)
	}
	return
}

func (t *Thread) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID, err = nanoid.New(12)
	}
	return
}

func (r *Reply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID, err = nanoid.New(12)
	}
	return
}

func (r *Roadmap) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID, err = nanoid.New(12)
	}
	return
}
