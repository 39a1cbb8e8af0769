package repository

import (
	"context"
	"errors"
	"strings"

	"mingle/internal/cache"
	"mingle/internal/models"
	"mingle/internal/observability"

	"gorm.io/gorm"
)

// PostQuery narrows a post listing. Query matches as a case-insensitive
// substring across the body, the author's username and tag labels. Tag
// filters on an exact tag label. AuthorIDs restricts to a set of authors
// and is used for followee feeds.
type PostQuery struct {
	Query     string
	Tag       string
	AuthorID  uint
	AuthorIDs []uint
	Newest    bool
	Limit     int
	Offset    int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, in PostQuery) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create", "posts")()
	// gorm inserts the post_tags join rows for any tags already set on post.
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post

	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Author").
			Preload("Tags").
			First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, in PostQuery) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list", "posts")()
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "list", "posts")
	defer span.End()

	var posts []*models.Post

	q := r.db.WithContext(ctx).Model(&models.Post{}).
		Preload("Author").
		Preload("Tags")

	if in.Query != "" {
		like := "%" + strings.ToLower(in.Query) + "%"
		q = q.
			Joins("JOIN profiles ON profiles.id = posts.author_id").
			Joins("LEFT JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("LEFT JOIN tags ON tags.id = post_tags.tag_id").
			Where(
				"LOWER(posts.text) LIKE ? OR LOWER(profiles.username) LIKE ? OR LOWER(tags.tag) LIKE ?",
				like, like, like,
			).
			Distinct("posts.*")
	}
	if in.Tag != "" {
		q = q.
			Joins("JOIN post_tags filter_pt ON filter_pt.post_id = posts.id").
			Joins("JOIN tags filter_tags ON filter_tags.id = filter_pt.tag_id").
			Where("filter_tags.tag = ?", in.Tag)
	}
	if in.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", in.AuthorID)
	}
	if len(in.AuthorIDs) > 0 {
		q = q.Where("posts.author_id IN ?", in.AuthorIDs)
	}

	if in.Newest {
		q = q.Order("posts.created_at DESC, posts.id DESC")
	} else {
		q = q.Order("posts.id")
	}

	if err := q.Limit(in.Limit).Offset(in.Offset).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	// Omit the association so Save never touches post_tags; tag changes go
	// through ReplaceTags.
	if err := r.db.WithContext(ctx).Omit("Tags").Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(post).Association("Tags").Replace(tags); err != nil {
		return models.NewInternalError(err)
	}
	post.Tags = tags
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
