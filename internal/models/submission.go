package models

import (
	"time"

	"gorm.io/gorm"
)

// SourceType is where a submitted link points.
type SourceType string

const (
	SourceYouTube   SourceType = "youtube"
	SourceInstagram SourceType = "instagram"
	SourceReddit    SourceType = "reddit"
	SourceTwitter   SourceType = "twitter"
	SourceArticle   SourceType = "article"
)

// SourceTypes lists every accepted source in display order.
var SourceTypes = []SourceType{SourceYouTube, SourceInstagram, SourceReddit, SourceTwitter, SourceArticle}

func (s SourceType) Valid() bool {
	for _, st := range SourceTypes {
		if s == st {
			return true
		}
	}
	return false
}

// Status is the curation lifecycle of a submission: pending, then approved or rejected.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// CanTransition reports whether moderation may move a submission from s to next.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

// Submission is a link posted by a user for curation.
type Submission struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string     `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Title        string     `gorm:"not null" json:"title"`
	URL          string     `gorm:"not null" json:"url"`
	Description  string     `gorm:"type:text" json:"description,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	SourceType   SourceType `gorm:"type:varchar(20);not null;index" json:"source_type"`
	Upvotes      int        `gorm:"not null;default:0" json:"upvotes"`
	Status       Status     `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	Tags         []Tag      `gorm:"many2many:submission_tags;constraint:OnDelete:CASCADE" json:"tags"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a topic label; submissions link to tags by slug.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`
}

// DefaultTags are the topics every installation starts with.
var DefaultTags = []Tag{
	{Name: "Science", Slug: "science"},
	{Name: "Discipline", Slug: "discipline"},
	{Name: "Running", Slug: "running"},
	{Name: "Philosophy", Slug: "philosophy"},
	{Name: "Art", Slug: "art"},
	{Name: "Tech", Slug: "tech"},
	{Name: "Mental Health", Slug: "mental-health"},
	{Name: "Productivity", Slug: "productivity"},
	{Name: "Psychology", Slug: "psychology"},
	{Name: "Fitness", Slug: "fitness"},
	{Name: "Creativity", Slug: "creativity"},
	{Name: "Learning", Slug: "learning"},
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	return nil
}
