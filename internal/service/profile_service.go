package service

import (
	"context"

	"mingle/internal/models"
	"mingle/internal/observability"
	"mingle/internal/repository"
	"mingle/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
}

type UpdateProfileInput struct {
	UserID     uint
	Name       *string
	LastName   *string
	Bio        *string
	BirthDate  *string
	PictureURL *string
}

type ListProfilesInput struct {
	Query         string
	ExcludeUserID uint
	Limit         int
	Offset        int
}

// FollowState is the outcome of a follow toggle: the refreshed target
// profile and whether the actor now follows it.
type FollowState struct {
	Target    *models.Profile
	Following bool
}

func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, userRepo: userRepo}
}

// EnsureProfile returns the profile for userID, creating one mirroring the
// user's username and email on first touch. Losing a concurrent creation
// race falls back to the winner's row, so the call is idempotent.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile = &models.Profile{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "VALIDATION_ERROR" {
			// Only a lost race against the same user leaves a row to pick
			// up; any other unique collision keeps the original error.
			existing, getErr := s.profileRepo.GetByUserID(ctx, userID)
			if getErr != nil {
				return nil, getErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) ListProfiles(ctx context.Context, in ListProfilesInput) ([]models.Profile, error) {
	return s.profileRepo.Search(ctx, repository.ProfileSearch{
		Query:         in.Query,
		ExcludeUserID: in.ExcludeUserID,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
}

// GetProfile returns the profile for username with follower counts attached.
func (s *ProfileService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.withEdgeCounts(ctx, profile)
}

// GetProfileByID returns the profile for id with follower counts attached.
func (s *ProfileService) GetProfileByID(ctx context.Context, id uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withEdgeCounts(ctx, profile)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.EnsureProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := validation.ValidateName(*in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.Name = *in.Name
	}
	if in.LastName != nil {
		if err := validation.ValidateName(*in.LastName); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.LastName = *in.LastName
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.Bio = *in.Bio
	}
	if in.BirthDate != nil {
		if err := validation.ValidateBirthDate(*in.BirthDate); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.BirthDate = *in.BirthDate
	}
	if in.PictureURL != nil {
		profile.PictureURL = *in.PictureURL
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.withEdgeCounts(ctx, profile)
}

// DeleteAccount removes the user's profile, posts, follow edges, and the
// login identity itself in one transaction.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID uint) error {
	span, ctx := observability.NewSpan(ctx, "ProfileService.DeleteAccount")
	defer span.End()
	span.AddAttributes(attribute.Int("user.id", int(userID)))

	profile, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		span.SetError(err)
		return err
	}
	if err := s.profileRepo.DeleteCascade(ctx, profile); err != nil {
		span.SetError(err)
		return err
	}
	observability.AccountsDeleted.Inc()
	return nil
}

// ToggleFollow flips whether the actor follows the target profile. Following
// yourself is rejected before any write happens.
func (s *ProfileService) ToggleFollow(ctx context.Context, actorID, targetProfileID uint) (*FollowState, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, "ProfileService", "ToggleFollow")
	defer span.End()

	actor, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.profileRepo.GetByID(ctx, targetProfileID)
	if err != nil {
		return nil, err
	}

	if actor.ID == target.ID {
		return nil, models.NewInvalidOperationError("forbidden to follow yourself")
	}

	following, err := s.profileRepo.ToggleFollow(ctx, actor, target)
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, err
	}

	if following {
		observability.FollowToggles.WithLabelValues("followed").Inc()
	} else {
		observability.FollowToggles.WithLabelValues("unfollowed").Inc()
	}

	target, err = s.withEdgeCounts(ctx, target)
	if err != nil {
		return nil, err
	}
	return &FollowState{Target: target, Following: following}, nil
}

func (s *ProfileService) Followers(ctx context.Context, profileID uint, limit, offset int) ([]models.Profile, error) {
	// Verify the profile exists so missing IDs surface as 404, not [].
	if _, err := s.profileRepo.GetByID(ctx, profileID); err != nil {
		return nil, err
	}
	return s.profileRepo.Followers(ctx, profileID, limit, offset)
}

func (s *ProfileService) Following(ctx context.Context, profileID uint, limit, offset int) ([]models.Profile, error) {
	if _, err := s.profileRepo.GetByID(ctx, profileID); err != nil {
		return nil, err
	}
	return s.profileRepo.Following(ctx, profileID, limit, offset)
}

func (s *ProfileService) withEdgeCounts(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	followers, following, err := s.profileRepo.CountEdges(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	profile.FollowersCount = followers
	profile.FollowingCount = following
	return profile, nil
}
