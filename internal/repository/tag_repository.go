package repository

import (
	"context"

	"github.com/curiohub/curiohub/internal/models"
	"gorm.io/gorm"
)

// TagRepository reads the tag catalogue.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}
