// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"mingle/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var tagPool = []string{
	"golang", "music", "movies", "gaming", "fitness", "hobbies", "sports",
	"technology", "anime", "books", "food", "travel", "programming", "linux",
	"frontend", "backend", "devops", "cloud", "ai", "startups", "homelab",
	"art", "history", "philosophy", "science", "pets", "finance", "photography",
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	// Clear existing data to avoid conflicts if requested
	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory := NewFactory(db, SeedOptions{})

	profiles, err := createAccounts(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create accounts: %w", err)
	}
	log.Printf("✓ %d test accounts created", len(profiles))

	if err := createPosts(factory, profiles, opts.NumPosts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", opts.NumPosts)

	edges, err := createFollowMesh(factory, profiles)
	if err != nil {
		return fmt.Errorf("failed to create follow edges: %w", err)
	}
	log.Printf("✓ %d follow edges created", edges)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE post_tags, posts, tags, profile_followers, profiles, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createAccounts(factory *Factory, count int) ([]*models.Profile, error) {
	profiles := make([]*models.Profile, 0, count)

	// Always include a known login for manual testing.
	if count >= 1 {
		_, profile, err := factory.CreateAccount(func(u *models.User, p *models.Profile) {
			u.Username = "demo"
			u.Email = "demo@example.com"
			p.Username = "demo"
			p.Email = "demo@example.com"
			p.Name = "Demo"
			p.LastName = "User"
			p.Bio = "One of the OGs."
		})
		if err == nil {
			profiles = append(profiles, profile)
		}
	}

	for i := len(profiles); i < count; i++ {
		_, profile, err := factory.CreateAccount()
		if err != nil {
			log.Printf("Failed to create account %d: %v", i, err)
			continue
		}
		profiles = append(profiles, profile)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d accounts...", i)
		}
	}

	return profiles, nil
}

func createPosts(factory *Factory, profiles []*models.Profile, count int) error {
	if len(profiles) == 0 {
		return nil
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < count; i++ {
		author := profiles[r.Intn(len(profiles))]

		// up to three tags per post, drawn from a shared pool so
		// labels repeat across authors
		labels := make([]string, 0, 3)
		for n := r.Intn(4); n > 0; n-- {
			labels = append(labels, tagPool[r.Intn(len(tagPool))])
		}

		if _, err := factory.CreatePost(author, labels); err != nil {
			return err
		}

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}

	return nil
}

// createFollowMesh links each profile to a handful of random others so the
// followees feed has content out of the box.
func createFollowMesh(factory *Factory, profiles []*models.Profile) (int, error) {
	if len(profiles) < 2 {
		return 0, nil
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	edges := 0
	for _, follower := range profiles {
		seen := map[uint]bool{follower.ID: true}
		for n := r.Intn(5) + 1; n > 0; n-- {
			target := profiles[r.Intn(len(profiles))]
			if seen[target.ID] {
				continue
			}
			seen[target.ID] = true
			if err := factory.CreateFollow(follower, target); err != nil {
				return edges, err
			}
			edges++
		}
	}
	return edges, nil
}
