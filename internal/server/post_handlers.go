package server

import (
	"mingle/internal/models"
	"mingle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description List post summaries, optionally filtered by a search term or a tag
// @Tags posts
// @Produce json
// @Param search query string false "Substring matched against text, author username and tag labels"
// @Param tag query string false "Exact tag label"
// @Param author query int false "Author profile ID"
// @Param newest query bool false "Order by creation time, newest first"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size (default 15, max 100)"
// @Success 200 {array} server.PostSummary
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c)

	in := service.ListPostsInput{
		Scope:  service.ScopeAll,
		Query:  c.Query("search"),
		Tag:    c.Query("tag"),
		Newest: c.QueryBool("newest"),
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	if author := c.QueryInt("author"); author > 0 {
		in.AuthorID = uint(author)
	}

	// The scope param folds /my_posts and /followers_posts into the main
	// listing. It is gated while clients migrate off the dedicated routes.
	if scope := c.Query("scope"); scope != "" {
		userID, ok := s.optionalUserID(c)
		if ok && s.featureFlags.Enabled("feed_scope_params", userID) {
			profile, err := s.profileService.EnsureProfile(c.Context(), userID)
			if err != nil {
				return models.RespondWithError(c, mapServiceError(err), err)
			}
			switch scope {
			case "mine":
				in.Scope = service.ScopeMine
			case "followees":
				in.Scope = service.ScopeFollowees
			}
			in.ActorID = profile.ID
		}
	}

	posts, err := s.postService.ListPosts(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(renderPosts(posts, actionList))
}

// GetMyPosts handles GET /api/posts/my_posts
// @Summary List own posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} server.PostSummary
// @Router /posts/my_posts [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	p := parsePagination(c)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Scope:   service.ScopeMine,
		ActorID: actingProfileID(c),
		Limit:   p.Limit,
		Offset:  p.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(renderPosts(posts, actionList))
}

// GetFolloweesPosts handles GET /api/posts/followers_posts. The route name
// is historical: it lists posts by the profiles the caller follows.
// @Summary List posts from followed profiles
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} server.PostSummary
// @Router /posts/followers_posts [get]
func (s *Server) GetFolloweesPosts(c *fiber.Ctx) error {
	p := parsePagination(c)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Scope:   service.ScopeFollowees,
		ActorID: actingProfileID(c),
		Limit:   p.Limit,
		Offset:  p.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(renderPosts(posts, actionList))
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} server.PostDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, svcErr := s.postService.GetPost(c.Context(), postID)
	if svcErr != nil {
		return models.RespondWithError(c, mapServiceError(svcErr), svcErr)
	}

	return c.JSON(postActionViews[actionDetail](post))
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{text=string,tags=[]string,picture_url=string} true "Post content"
// @Success 201 {object} server.PostDetail
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Text       string   `json:"text"`
		Tags       []string `json:"tags"`
		PictureURL string   `json:"picture_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:   actingProfileID(c),
		Text:       req.Text,
		Tags:       req.Tags,
		PictureURL: req.PictureURL,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(postActionViews[actionDetail](post))
}

// UpdatePost handles PUT and PATCH /api/posts/:id
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{text=string,tags=[]string,picture_url=string} true "Fields to update"
// @Success 200 {object} server.PostDetail
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text       string    `json:"text"`
		Tags       *[]string `json:"tags"`
		PictureURL string    `json:"picture_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdatePostInput{
		ActorID:    actingProfileID(c),
		PostID:     postID,
		Text:       req.Text,
		PictureURL: req.PictureURL,
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
		in.ReplaceTags = true
	}

	post, svcErr := s.postService.UpdatePost(c.Context(), in)
	if svcErr != nil {
		return models.RespondWithError(c, mapServiceError(svcErr), svcErr)
	}

	return c.JSON(postActionViews[actionDetail](post))
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		ActorID: actingProfileID(c),
		PostID:  postID,
	}); svcErr != nil {
		return models.RespondWithError(c, mapServiceError(svcErr), svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func renderPosts(posts []*models.Post, action string) []any {
	view := postActionViews[action]
	out := make([]any, 0, len(posts))
	for _, p := range posts {
		out = append(out, view(p))
	}
	return out
}
