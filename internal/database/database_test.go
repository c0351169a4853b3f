package database

import (
	"testing"

	"github.com/curiohub/curiohub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestMigrateSeedsTagsOnce(t *testing.T) {
	db := setupTestDB(t)

	// A second run must not duplicate the defaults.
	require.NoError(t, Migrate(db))

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(len(models.DefaultTags)), count)
}

func TestUniqueVotePerUserAndSubmission(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Email: "a@example.com", Username: "alice", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	sub := models.Submission{UserID: user.ID, Title: "t", URL: "https://example.com", SourceType: models.SourceArticle}
	require.NoError(t, db.Create(&sub).Error)
	assert.Equal(t, models.StatusPending, sub.Status)

	require.NoError(t, db.Create(&models.Vote{UserID: user.ID, SubmissionID: sub.ID}).Error)
	err := db.Create(&models.Vote{UserID: user.ID, SubmissionID: sub.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, db.Create(&models.Bookmark{UserID: user.ID, SubmissionID: sub.ID}).Error)
	err = db.Create(&models.Bookmark{UserID: user.ID, SubmissionID: sub.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestHealthWithoutConnection(t *testing.T) {
	prev := DB
	DB = nil
	defer func() { DB = prev }()

	assert.Error(t, Health())
	assert.NoError(t, Close())
}
