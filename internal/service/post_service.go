package service

import (
	"context"
	"strings"

	"mingle/internal/cache"
	"mingle/internal/models"
	"mingle/internal/observability"
	"mingle/internal/repository"
	"mingle/internal/validation"
)

// PostScope selects which slice of the timeline a listing covers.
type PostScope int

const (
	// ScopeAll lists every post.
	ScopeAll PostScope = iota
	// ScopeMine lists posts authored by the acting profile.
	ScopeMine
	// ScopeFollowees lists posts authored by profiles the actor follows.
	ScopeFollowees
)

type PostService struct {
	postRepo    repository.PostRepository
	tagRepo     repository.TagRepository
	profileRepo repository.ProfileRepository
}

type CreatePostInput struct {
	AuthorID   uint
	Text       string
	Tags       []string
	PictureURL string
}

type UpdatePostInput struct {
	ActorID     uint
	PostID      uint
	Text        string
	Tags        []string
	ReplaceTags bool
	PictureURL  string
}

type ListPostsInput struct {
	Scope    PostScope
	ActorID  uint
	AuthorID uint
	Query    string
	Tag      string
	Newest   bool
	Limit    int
	Offset   int
}

type DeletePostInput struct {
	ActorID uint
	PostID  uint
}

func NewPostService(
	postRepo repository.PostRepository,
	tagRepo repository.TagRepository,
	profileRepo repository.ProfileRepository,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		tagRepo:     tagRepo,
		profileRepo: profileRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, "PostService", "CreatePost")
	defer span.End()

	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	tags, err := s.resolveTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:       in.Text,
		AuthorID:   in.AuthorID,
		Tags:       tags,
		PictureURL: in.PictureURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, err
	}

	observability.PostsCreated.Inc()
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	query := repository.PostQuery{
		AuthorID: in.AuthorID,
		Query:    in.Query,
		Tag:      in.Tag,
		Newest:   in.Newest,
		Limit:    in.Limit,
		Offset:   in.Offset,
	}

	switch in.Scope {
	case ScopeMine:
		query.AuthorID = in.ActorID
	case ScopeFollowees:
		ids, err := s.profileRepo.FolloweeIDs(ctx, in.ActorID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			// Following nobody means an empty feed, not an unfiltered one.
			return []*models.Post{}, nil
		}
		query.AuthorIDs = ids
	}

	// Only the plain unfiltered listing is cacheable.
	if in.Scope == ScopeAll && in.AuthorID == 0 && in.Query == "" && in.Tag == "" && !in.Newest {
		var posts []*models.Post
		key := cache.PostsListKey(in.Offset/max(in.Limit, 1)+1, in.Limit)
		err := cache.Aside(ctx, key, &posts, cache.PostsListTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, query)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}

	return s.postRepo.List(ctx, query)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != in.ActorID {
		return nil, models.NewPermissionDeniedError("You can only update your own posts")
	}

	if in.Text != "" {
		if err := validation.ValidatePostText(in.Text); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Text = in.Text
	}
	if in.PictureURL != "" {
		post.PictureURL = in.PictureURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	if in.ReplaceTags {
		tags, err := s.resolveTags(ctx, in.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.postRepo.ReplaceTags(ctx, post, tags); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}

	if post.AuthorID != in.ActorID {
		return models.NewPermissionDeniedError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

// resolveTags trims labels, drops empties, deduplicates while keeping the
// first occurrence's position, and maps each label to its shared tag row.
func (s *PostService) resolveTags(ctx context.Context, labels []string) ([]models.Tag, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(labels))
	tags := make([]models.Tag, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}

		if err := validation.ValidateTag(label); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		tag, err := s.tagRepo.GetOrCreate(ctx, label)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}
