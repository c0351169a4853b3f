package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/curiohub/curiohub/internal/models"
	"gorm.io/gorm"
)

// FeedFilter narrows the approved feed. An empty Source or "all" matches
// every source; Tags matches submissions carrying any of the slugs.
type FeedFilter struct {
	Source string
	Tags   []string
	Page   Page
}

// SubmissionRepository handles submissions, their tags and bookmarks lists.
type SubmissionRepository interface {
	Feed(ctx context.Context, filter FeedFilter) ([]models.Submission, error)
	Discover(ctx context.Context, page Page) ([]models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	Create(ctx context.Context, sub *models.Submission, tagSlugs []string) error
	ByUser(ctx context.Context, userID string, includeRejected bool, page Page) ([]models.Submission, error)
	SavedBy(ctx context.Context, userID string, page Page) ([]models.Bookmark, error)
	SetStatus(ctx context.Context, id string, status models.Status) (*models.Submission, error)
	RecountUpvotes(ctx context.Context, id string) (int, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Preload("Tags")
}

// Feed returns approved submissions, most upvoted first.
func (r *submissionRepository) Feed(ctx context.Context, filter FeedFilter) ([]models.Submission, error) {
	page := filter.Page.Normalize()
	q := r.withRelations(ctx).Where("status = ?", models.StatusApproved)

	if filter.Source != "" && filter.Source != "all" {
		q = q.Where("source_type = ?", filter.Source)
	}
	if len(filter.Tags) > 0 {
		tagged := r.db.Table("submission_tags").
			Select("submission_tags.submission_id").
			Joins("JOIN tags ON tags.id = submission_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags)
		q = q.Where("id IN (?)", tagged)
	}

	var subs []models.Submission
	err := q.Order("upvotes DESC").Order("created_at DESC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&subs).Error
	return subs, err
}

// Discover returns the pending queue, newest first.
func (r *submissionRepository) Discover(ctx context.Context, page Page) ([]models.Submission, error) {
	page = page.Normalize()
	var subs []models.Submission
	err := r.withRelations(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at DESC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&subs).Error
	return subs, err
}

// Get returns a submission that is approved or pending. Rejected ones are
// reported as not found.
func (r *submissionRepository) Get(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	err := r.withRelations(ctx).
		Where("id = ? AND status IN ?", id, []models.Status{models.StatusApproved, models.StatusPending}).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create stores sub and links it to the tags named by tagSlugs. Unknown
// slugs are skipped.
func (r *submissionRepository) Create(ctx context.Context, sub *models.Submission, tagSlugs []string) error {
	if sub == nil {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tags []models.Tag
		if len(tagSlugs) > 0 {
			if err := tx.Where("slug IN ?", tagSlugs).Find(&tags).Error; err != nil {
				return fmt.Errorf("load tags: %w", err)
			}
		}
		sub.Tags = nil
		if err := tx.Omit("User", "Tags").Create(sub).Error; err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		if len(tags) > 0 {
			if err := tx.Model(sub).Association("Tags").Append(tags); err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
		}
		sub.Tags = tags
		return nil
	})
}

// ByUser lists a user's submissions, newest first. Rejected submissions
// are only included when includeRejected is set (the owner's own view).
func (r *submissionRepository) ByUser(ctx context.Context, userID string, includeRejected bool, page Page) ([]models.Submission, error) {
	page = page.Normalize()
	q := r.withRelations(ctx).Where("user_id = ?", userID)
	if !includeRejected {
		q = q.Where("status <> ?", models.StatusRejected)
	}
	var subs []models.Submission
	err := q.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset).Find(&subs).Error
	return subs, err
}

// SavedBy lists a user's bookmarks with their submissions, newest bookmark first.
func (r *submissionRepository) SavedBy(ctx context.Context, userID string, page Page) ([]models.Bookmark, error) {
	page = page.Normalize()
	var bookmarks []models.Bookmark
	err := r.db.WithContext(ctx).
		Preload("Submission").
		Preload("Submission.User").
		Preload("Submission.Tags").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&bookmarks).Error
	return bookmarks, err
}

// SetStatus moves a pending submission to approved or rejected.
func (r *submissionRepository) SetStatus(ctx context.Context, id string, status models.Status) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}
		if !sub.Status.CanTransition(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sub.Status, status)
		}
		sub.Status = status
		return tx.Model(&sub).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// RecountUpvotes sets the stored upvote total to the number of vote rows
// and returns it. The vote path never calls this; it is an operator tool
// for totals that drifted under concurrent voting.
func (r *submissionRepository) RecountUpvotes(ctx context.Context, id string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Vote{}).Where("submission_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		result := tx.Model(&models.Submission{}).Where("id = ?", id).Update("upvotes", count)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSubmissionNotFound
		}
		return nil
	})
	return int(count), err
}
