// Package interaction holds the per-card vote and bookmark state machine.
// A Controller talks to storage only through a Gateway, so the same logic
// runs inside the HTTP server (against the database) and inside the CLI
// (against the HTTP API).
package interaction

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrConstraintViolation marks a write rejected by a uniqueness
	// constraint, i.e. the (user, submission) row already exists.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrPermissionDenied marks a write the row-level policy refused.
	ErrPermissionDenied = errors.New("permission denied")
)

// Viewer is the authenticated user looking at a card.
type Viewer struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// VoteRow is a persisted vote.
type VoteRow struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SubmissionID string    `json:"submission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// BookmarkRow is a persisted bookmark.
type BookmarkRow struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SubmissionID string    `json:"submission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Gateway is the data-access surface a Controller needs. Lookups report
// absence as (nil, nil). Duplicate inserts wrap ErrConstraintViolation and
// refused writes wrap ErrPermissionDenied.
type Gateway interface {
	CurrentUser(ctx context.Context) (*Viewer, error)
	FindBookmark(ctx context.Context, userID, submissionID string) (*BookmarkRow, error)
	InsertVote(ctx context.Context, userID, submissionID string) (*VoteRow, error)
	UpdateUpvoteCount(ctx context.Context, submissionID string, count int) error
	InsertBookmark(ctx context.Context, userID, submissionID string) (*BookmarkRow, error)
	DeleteBookmark(ctx context.Context, userID, submissionID string) error
}

// Snapshot is the part of a submission a card needs. Upvotes is whatever the
// page loaded; other viewers may have changed it since.
type Snapshot struct {
	ID      string
	Upvotes int
}
