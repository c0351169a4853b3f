package models

import (
	"time"

	"gorm.io/gorm"
)

// Vote is one user's upvote of one submission. Votes are never retracted.
type Vote struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_submission" json:"user_id"`
	SubmissionID string     `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_submission;index" json:"submission_id"`
	User         User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Submission   Submission `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Bookmark is a user's saved submission.
type Bookmark struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_user_submission" json:"user_id"`
	SubmissionID string     `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_user_submission;index" json:"submission_id"`
	User         User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Submission   Submission `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"submission,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = generateUUID()
	}
	return nil
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = generateUUID()
	}
	return nil
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&PasswordReset{},
		&Tag{},
		&Submission{},
		&Vote{},
		&Bookmark{},
	}
}
