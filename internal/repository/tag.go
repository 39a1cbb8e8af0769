package repository

import (
	"context"
	"errors"

	"mingle/internal/models"

	"gorm.io/gorm"
)

// TagRepository manages the shared tag vocabulary.
type TagRepository interface {
	GetOrCreate(ctx context.Context, text string) (*models.Tag, error)
	List(ctx context.Context, limit, offset int) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// GetOrCreate returns the existing tag row for text, creating it when
// missing. A concurrent insert losing the unique-constraint race falls
// back to refetching the winner's row.
func (r *tagRepository) GetOrCreate(ctx context.Context, text string) (*models.Tag, error) {
	var tag models.Tag

	err := r.db.WithContext(ctx).Where("tag = ?", text).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	tag = models.Tag{Tag: text}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isUniqueConstraintError(err) {
			var existing models.Tag
			if err := r.db.WithContext(ctx).Where("tag = ?", text).First(&existing).Error; err != nil {
				return nil, models.NewInternalError(err)
			}
			return &existing, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

func (r *tagRepository) List(ctx context.Context, limit, offset int) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("tag").Limit(limit).Offset(offset).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}
