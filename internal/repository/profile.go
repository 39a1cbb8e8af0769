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

// ProfileSearch narrows a profile listing. Query matches as a case-insensitive
// substring across username, name parts, birth date and email.
type ProfileSearch struct {
	Query         string
	ExcludeUserID uint
	Limit         int
	Offset        int
}

// ProfileRepository defines persistence operations for profiles and the
// follow graph.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	Search(ctx context.Context, in ProfileSearch) ([]models.Profile, error)
	DeleteCascade(ctx context.Context, profile *models.Profile) error

	ToggleFollow(ctx context.Context, actor, target *models.Profile) (bool, error)
	IsFollowing(ctx context.Context, actorID, targetID uint) (bool, error)
	Followers(ctx context.Context, profileID uint, limit, offset int) ([]models.Profile, error)
	Following(ctx context.Context, profileID uint, limit, offset int) ([]models.Profile, error)
	CountEdges(ctx context.Context, profileID uint) (followers, following int64, err error)
	FolloweeIDs(ctx context.Context, profileID uint) ([]uint, error)
}

type profileRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	key := cache.ProfileKey(username)

	err := cache.Aside(ctx, key, &profile, cache.ProfileTTL, func() error {
		if err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Profile", username)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Profile already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.Username)
	return nil
}

func (r *profileRepository) Search(ctx context.Context, in ProfileSearch) ([]models.Profile, error) {
	defer r.metrics.TrackQuery("search", "profiles")()
	var profiles []models.Profile

	q := r.db.WithContext(ctx).Model(&models.Profile{})
	if in.Query != "" {
		// LOWER(...) LIKE keeps the match case-insensitive on both
		// postgres and the sqlite test databases.
		like := "%" + strings.ToLower(in.Query) + "%"
		q = q.Where(
			"LOWER(username) LIKE ? OR LOWER(name) LIKE ? OR LOWER(last_name) LIKE ? OR birth_date LIKE ? OR LOWER(email) LIKE ?",
			like, like, like, "%"+in.Query+"%", like,
		)
	}
	if in.ExcludeUserID != 0 {
		q = q.Where("user_id <> ?", in.ExcludeUserID)
	}

	if err := q.Order("id").Limit(in.Limit).Offset(in.Offset).Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

// DeleteCascade removes the profile, its posts with their tag links, every
// follow edge touching it, and the owning user, all in one transaction.
// Shared tag rows survive; they may be referenced by other posts.
func (r *profileRepository) DeleteCascade(ctx context.Context, profile *models.Profile) error {
	defer r.metrics.TrackQuery("delete_cascade", "profiles")()

	// Collected up front so the cached detail of each authored post can be
	// dropped after the delete commits.
	var postIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ?", profile.ID).
		Pluck("id", &postIDs).Error; err != nil {
		return models.NewInternalError(err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM profile_followers WHERE profile_id = ? OR follower_id = ?",
			profile.ID, profile.ID,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM post_tags WHERE post_id IN (SELECT id FROM posts WHERE author_id = ?)",
			profile.ID,
		).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("author_id = ?", profile.ID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&models.Profile{}, profile.ID).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.User{}, profile.UserID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateProfile(ctx, profile.Username)
	for _, id := range postIDs {
		cache.Invalidate(ctx, cache.PostKey(id))
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

// ToggleFollow flips the actor->target follow edge and returns the resulting
// state (true when the actor now follows the target). The check and the
// write happen in one transaction so concurrent toggles cannot double-insert.
func (r *profileRepository) ToggleFollow(ctx context.Context, actor, target *models.Profile) (bool, error) {
	defer r.metrics.TrackQuery("toggle_follow", "profile_followers")()
	var following bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("profile_followers").
			Where("profile_id = ? AND follower_id = ?", target.ID, actor.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			following = false
			return tx.Exec(
				"DELETE FROM profile_followers WHERE profile_id = ? AND follower_id = ?",
				target.ID, actor.ID,
			).Error
		}

		following = true
		return tx.Exec(
			"INSERT INTO profile_followers (profile_id, follower_id) VALUES (?, ?)",
			target.ID, actor.ID,
		).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}

	cache.InvalidateProfile(ctx, actor.Username)
	cache.InvalidateProfile(ctx, target.Username)
	return following, nil
}

func (r *profileRepository) IsFollowing(ctx context.Context, actorID, targetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("profile_followers").
		Where("profile_id = ? AND follower_id = ?", targetID, actorID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *profileRepository) Followers(ctx context.Context, profileID uint, limit, offset int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Joins("JOIN profile_followers pf ON pf.follower_id = profiles.id").
		Where("pf.profile_id = ?", profileID).
		Order("profiles.id").
		Limit(limit).Offset(offset).
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) Following(ctx context.Context, profileID uint, limit, offset int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Joins("JOIN profile_followers pf ON pf.profile_id = profiles.id").
		Where("pf.follower_id = ?", profileID).
		Order("profiles.id").
		Limit(limit).Offset(offset).
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) CountEdges(ctx context.Context, profileID uint) (int64, int64, error) {
	var followers, following int64

	if err := r.db.WithContext(ctx).Table("profile_followers").
		Where("profile_id = ?", profileID).
		Count(&followers).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Table("profile_followers").
		Where("follower_id = ?", profileID).
		Count(&following).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return followers, following, nil
}

func (r *profileRepository) FolloweeIDs(ctx context.Context, profileID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Table("profile_followers").
		Where("follower_id = ?", profileID).
		Pluck("profile_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
