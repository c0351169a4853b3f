// Package gateway implements interaction.Gateway against the database
// (Store) and against the HTTP API (Remote).
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/curiohub/curiohub/internal/interaction"
	"github.com/curiohub/curiohub/internal/models"
	"gorm.io/gorm"
)

// ErrSubmissionNotFound is returned when a write names a missing submission.
var ErrSubmissionNotFound = errors.New("submission not found")

// Store is a database-backed Gateway scoped to one viewer. Row writes are
// only allowed for the viewer's own user id, the same rule the API's
// row endpoints enforce.
type Store struct {
	db       *gorm.DB
	viewerID string
}

var _ interaction.Gateway = (*Store)(nil)

// NewStore returns a Store acting for viewerID ("" for anonymous).
func NewStore(db *gorm.DB, viewerID string) *Store {
	return &Store{db: db, viewerID: viewerID}
}

func (s *Store) CurrentUser(ctx context.Context) (*interaction.Viewer, error) {
	if s.viewerID == "" {
		return nil, nil
	}
	var user models.User
	err := s.db.WithContext(ctx).Select("id", "username").First(&user, "id = ?", s.viewerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load current user: %w", err)
	}
	return &interaction.Viewer{ID: user.ID, Username: user.Username}, nil
}

func (s *Store) FindBookmark(ctx context.Context, userID, submissionID string) (*interaction.BookmarkRow, error) {
	if err := s.authorize(userID); err != nil {
		return nil, err
	}
	var b models.Bookmark
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND submission_id = ?", userID, submissionID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bookmark: %w", err)
	}
	return bookmarkRow(&b), nil
}

func (s *Store) InsertVote(ctx context.Context, userID, submissionID string) (*interaction.VoteRow, error) {
	if err := s.authorize(userID); err != nil {
		return nil, err
	}
	v := models.Vote{UserID: userID, SubmissionID: submissionID}
	if err := s.db.WithContext(ctx).Create(&v).Error; err != nil {
		return nil, fmt.Errorf("insert vote: %w", translate(err))
	}
	return &interaction.VoteRow{ID: v.ID, UserID: v.UserID, SubmissionID: v.SubmissionID, CreatedAt: v.CreatedAt}, nil
}

// UpdateUpvoteCount overwrites the stored total with count. It does not
// increment, so concurrent callers working from the same base lose updates.
func (s *Store) UpdateUpvoteCount(ctx context.Context, submissionID string, count int) error {
	if s.viewerID == "" {
		return fmt.Errorf("update upvotes: %w", interaction.ErrPermissionDenied)
	}
	if count < 0 {
		return fmt.Errorf("update upvotes: negative count %d", count)
	}
	result := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", submissionID).
		Update("upvotes", count)
	if result.Error != nil {
		return fmt.Errorf("update upvotes: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update upvotes: %w", ErrSubmissionNotFound)
	}
	return nil
}

func (s *Store) InsertBookmark(ctx context.Context, userID, submissionID string) (*interaction.BookmarkRow, error) {
	if err := s.authorize(userID); err != nil {
		return nil, err
	}
	b := models.Bookmark{UserID: userID, SubmissionID: submissionID}
	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, fmt.Errorf("insert bookmark: %w", translate(err))
	}
	return bookmarkRow(&b), nil
}

// DeleteBookmark removes the bookmark if present. Deleting a missing
// bookmark is not an error.
func (s *Store) DeleteBookmark(ctx context.Context, userID, submissionID string) error {
	if err := s.authorize(userID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND submission_id = ?", userID, submissionID).
		Delete(&models.Bookmark{}).Error
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

func (s *Store) authorize(userID string) error {
	if s.viewerID == "" || userID != s.viewerID {
		return interaction.ErrPermissionDenied
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", interaction.ErrConstraintViolation, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrSubmissionNotFound, err)
	default:
		return err
	}
}

func bookmarkRow(b *models.Bookmark) *interaction.BookmarkRow {
	return &interaction.BookmarkRow{ID: b.ID, UserID: b.UserID, SubmissionID: b.SubmissionID, CreatedAt: b.CreatedAt}
}
