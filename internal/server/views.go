package server

import (
	"time"

	"mingle/internal/models"
)

// List views return compact summaries; detail views add the full body and
// timestamps. Which shape a post endpoint uses is looked up from
// postActionViews by action name, so every list route renders identically.

// ProfileSummary is the compact profile representation used in listings.
type ProfileSummary struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	PictureURL string `json:"picture_url"`
}

// ProfileDetail is the full profile representation.
type ProfileDetail struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	LastName       string `json:"last_name"`
	Bio            string `json:"bio"`
	BirthDate      string `json:"birth_date,omitempty"`
	PictureURL     string `json:"picture_url"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

// PostSummary is the compact post representation used in listings. The body
// is truncated to a preview.
type PostSummary struct {
	ID          uint           `json:"id"`
	Author      ProfileSummary `json:"author"`
	TextPreview string         `json:"text_preview"`
	Tags        []string       `json:"tags"`
	PictureURL  string         `json:"picture_url"`
}

// PostDetail is the full post representation.
type PostDetail struct {
	ID         uint           `json:"id"`
	Author     ProfileSummary `json:"author"`
	Text       string         `json:"text"`
	Tags       []string       `json:"tags"`
	PictureURL string         `json:"picture_url"`
	CreatedAt  time.Time      `json:"created_at"`
}

// FollowResult is returned by the follow toggle endpoint.
type FollowResult struct {
	Following bool          `json:"following"`
	Profile   ProfileDetail `json:"profile"`
}

func newProfileSummary(p *models.Profile) ProfileSummary {
	return ProfileSummary{
		ID:         p.ID,
		Username:   p.Username,
		PictureURL: p.PictureURL,
	}
}

func newProfileDetail(p *models.Profile) ProfileDetail {
	return ProfileDetail{
		ID:             p.ID,
		Username:       p.Username,
		Email:          p.Email,
		Name:           p.Name,
		LastName:       p.LastName,
		Bio:            p.Bio,
		BirthDate:      p.BirthDate,
		PictureURL:     p.PictureURL,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowingCount,
	}
}

func newProfileSummaries(profiles []models.Profile) []ProfileSummary {
	out := make([]ProfileSummary, 0, len(profiles))
	for i := range profiles {
		out = append(out, newProfileSummary(&profiles[i]))
	}
	return out
}

func tagLabels(tags []models.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Tag)
	}
	return out
}

func newPostSummary(p *models.Post) PostSummary {
	return PostSummary{
		ID:          p.ID,
		Author:      newProfileSummary(&p.Author),
		TextPreview: p.TextPreview(),
		Tags:        tagLabels(p.Tags),
		PictureURL:  p.PictureURL,
	}
}

func newPostDetail(p *models.Post) PostDetail {
	return PostDetail{
		ID:         p.ID,
		Author:     newProfileSummary(&p.Author),
		Text:       p.Text,
		Tags:       tagLabels(p.Tags),
		PictureURL: p.PictureURL,
		CreatedAt:  p.CreatedAt,
	}
}

// postView renders a single post in the requested shape.
type postView func(p *models.Post) any

// Post endpoint actions, used as dispatch keys.
const (
	actionList   = "list"
	actionDetail = "detail"
)

// postActionViews maps an endpoint action to its output shape.
var postActionViews = map[string]postView{
	actionList:   func(p *models.Post) any { return newPostSummary(p) },
	actionDetail: func(p *models.Post) any { return newPostDetail(p) },
}
