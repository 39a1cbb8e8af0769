// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"mingle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions tunes how the factory generates data.
type SeedOptions struct {
	// DryRun builds entities without writing to the database.
	DryRun bool
	// SkipBcrypt stores a plaintext password, for dev fast mode only.
	SkipBcrypt bool
	// MaxDays bounds the created_at spread of generated posts.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// CreateAccount constructs and persists a `models.User` together with its
// `models.Profile`, the way signup provisions them. Optional override
// functions may modify the generated profile before saving.
func (f *Factory) CreateAccount(overrides ...func(*models.User, *models.Profile)) (*models.User, *models.Profile, error) {
	username := strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999))
	email := fmt.Sprintf("%s@%s", username, gofakeit.DomainName())

	user := &models.User{
		Username: username,
		Email:    email,
	}
	if f.opts.SkipBcrypt {
		user.Password = "Password123!abc"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password123!abc"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	profile := &models.Profile{
		Username:   username,
		Email:      email,
		Name:       gofakeit.FirstName(),
		LastName:   gofakeit.LastName(),
		Bio:        gofakeit.Sentence(10),
		BirthDate:  gofakeit.DateRange(time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC)).Format("2006-01-02"),
		PictureURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
	}

	for _, override := range overrides {
		override(user, profile)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		f.nextID++
		profile.ID = f.nextID
		profile.UserID = user.ID
		log.Printf("[dry-run] CreateAccount: %s (no DB write)", user.Username)
		return user, profile, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, nil, err
	}
	profile.UserID = user.ID
	if err := f.db.Create(profile).Error; err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// BuildPost constructs a post for the given profile without persisting it.
// Useful for batching.
func (f *Factory) BuildPost(author *models.Profile, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Text:     gofakeit.Sentence(gofakeit.Number(5, 40)),
		AuthorID: author.ID,
	}
	if gofakeit.Bool() {
		post.PictureURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	// #nosec G404: acceptable for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	daysBack := r.Intn(maxDays)
	hoursBack := r.Intn(24)
	minsBack := r.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	// posts hold at most 500 characters of text
	if runes := []rune(post.Text); len(runes) > models.MaxPostTextLength {
		post.Text = string(runes[:models.MaxPostTextLength])
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample `models.Post` authored by the
// given profile, attaching the provided tag labels.
func (f *Factory) CreatePost(author *models.Profile, labels []string, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)

	for _, label := range labels {
		tag, err := f.GetOrCreateTag(label)
		if err != nil {
			return nil, err
		}
		post.Tags = append(post.Tags, *tag)
	}

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: author=%d tags=%d (no DB write)", post.AuthorID, len(post.Tags))
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// GetOrCreateTag returns the shared tag row for a label, creating it on
// first use.
func (f *Factory) GetOrCreateTag(label string) (*models.Tag, error) {
	tag := &models.Tag{Tag: label}
	if f.opts.DryRun {
		f.nextID++
		tag.ID = f.nextID
		return tag, nil
	}
	if err := f.db.Where(models.Tag{Tag: label}).FirstOrCreate(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// CreateFollow persists a follow edge: follower starts following target.
func (f *Factory) CreateFollow(follower, target *models.Profile) error {
	if follower.ID == target.ID {
		return fmt.Errorf("profile %d cannot follow itself", follower.ID)
	}
	if f.opts.DryRun {
		log.Printf("[dry-run] CreateFollow: %d -> %d (no DB write)", follower.ID, target.ID)
		return nil
	}
	return f.db.Exec(
		"INSERT INTO profile_followers (profile_id, follower_id) VALUES (?, ?)",
		target.ID, follower.ID,
	).Error
}
