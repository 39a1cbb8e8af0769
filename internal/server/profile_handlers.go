package server

import (
	"errors"

	"mingle/internal/models"
	"mingle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfiles handles GET /api/profiles
// @Summary List profiles
// @Description List profiles as summaries, optionally filtered by a search term
// @Tags profiles
// @Produce json
// @Param search query string false "Substring matched against username, name, birth date and email"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size (default 15, max 100)"
// @Success 200 {array} server.ProfileSummary
// @Router /profiles [get]
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	p := parsePagination(c)

	// Authenticated callers never see themselves in the listing.
	var excludeUserID uint
	if userID, ok := s.optionalUserID(c); ok {
		excludeUserID = userID
	}

	profiles, err := s.profileService.ListProfiles(c.Context(), service.ListProfilesInput{
		Query:         c.Query("search"),
		ExcludeUserID: excludeUserID,
		Limit:         p.Limit,
		Offset:        p.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(newProfileSummaries(profiles))
}

// GetProfileByUsername handles GET /api/profiles/:username
// @Summary Get a profile
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} server.ProfileDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username} [get]
func (s *Server) GetProfileByUsername(c *fiber.Ctx) error {
	username := c.Params("username")

	profile, err := s.profileService.GetProfile(c.Context(), username)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(newProfileDetail(profile))
}

// GetMyProfile handles GET /api/profiles/me
// @Summary Get own profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} server.ProfileDetail
// @Router /profiles/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfileByID(c.Context(), actingProfileID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(newProfileDetail(profile))
}

// UpdateMyProfile handles PUT and PATCH /api/profiles/me
// @Summary Update own profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,last_name=string,bio=string,birth_date=string,picture_url=string} true "Fields to update"
// @Success 200 {object} server.ProfileDetail
// @Failure 400 {object} models.ErrorResponse
// @Router /profiles/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name       *string `json:"name"`
		LastName   *string `json:"last_name"`
		Bio        *string `json:"bio"`
		BirthDate  *string `json:"birth_date"`
		PictureURL *string `json:"picture_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := c.Locals("userID").(uint)
	profile, err := s.profileService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:     userID,
		Name:       req.Name,
		LastName:   req.LastName,
		Bio:        req.Bio,
		BirthDate:  req.BirthDate,
		PictureURL: req.PictureURL,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(newProfileDetail(profile))
}

// DeleteMyAccount handles DELETE /api/profiles/me. It removes the profile,
// its posts, its follow edges, and the login identity.
// @Summary Delete own account
// @Tags profiles
// @Security BearerAuth
// @Success 204
// @Router /profiles/me [delete]
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.profileService.DeleteAccount(c.Context(), userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleFollow handles POST /api/profiles/:id/follow
// @Summary Toggle following a profile
// @Description Follows the profile if not yet followed, unfollows otherwise
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 200 {object} server.FollowResult
// @Failure 400 {object} object{detail=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{id}/follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	state, err := s.profileService.ToggleFollow(c.Context(), actingProfileID(c), targetID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "INVALID_OPERATION" {
			// Self-follow keeps its legacy response shape.
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": appErr.Message,
			})
		}
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(FollowResult{
		Following: state.Following,
		Profile:   newProfileDetail(state.Target),
	})
}

// GetFollowers handles GET /api/profiles/:id/followers
// @Summary List a profile's followers
// @Tags profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {array} server.ProfileSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	profileID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c)

	profiles, svcErr := s.profileService.Followers(c.Context(), profileID, p.Limit, p.Offset)
	if svcErr != nil {
		return models.RespondWithError(c, mapServiceError(svcErr), svcErr)
	}

	return c.JSON(newProfileSummaries(profiles))
}

// GetFollowing handles GET /api/profiles/:id/following
// @Summary List profiles a profile follows
// @Tags profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {array} server.ProfileSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	profileID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c)

	profiles, svcErr := s.profileService.Following(c.Context(), profileID, p.Limit, p.Offset)
	if svcErr != nil {
		return models.RespondWithError(c, mapServiceError(svcErr), svcErr)
	}

	return c.JSON(newProfileSummaries(profiles))
}
