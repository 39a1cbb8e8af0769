package repository

import (
	"context"
	"testing"

	"mingle/internal/cache"
	"mingle/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_GetByUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	created := createAccount(t, db, "alice")

	profile, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, profile.ID)

	_, err = repo.GetByUsername(ctx, "ghost")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestProfileRepository_Search(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	alice := createAccount(t, db, "alice")
	alice.Name = "Alice"
	alice.LastName = "Liddell"
	alice.BirthDate = "1990-04-21"
	require.NoError(t, db.Save(alice).Error)

	bob := createAccount(t, db, "bob")
	bob.Name = "Bob"
	bob.LastName = "Stone"
	require.NoError(t, db.Save(bob).Error)

	t.Run("matches username substring case-insensitively", func(t *testing.T) {
		got, err := repo.Search(ctx, ProfileSearch{Query: "ALI", Limit: 15})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "alice", got[0].Username)
	})

	t.Run("matches last name", func(t *testing.T) {
		got, err := repo.Search(ctx, ProfileSearch{Query: "liddell", Limit: 15})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "alice", got[0].Username)
	})

	t.Run("matches birth date fragment", func(t *testing.T) {
		got, err := repo.Search(ctx, ProfileSearch{Query: "1990-04", Limit: 15})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "alice", got[0].Username)
	})

	t.Run("matches email", func(t *testing.T) {
		got, err := repo.Search(ctx, ProfileSearch{Query: "bob@example", Limit: 15})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].Username)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		got, err := repo.Search(ctx, ProfileSearch{Query: "zzz", Limit: 15})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("excludes the requesting user", func(t *testing.T) {
		got, err := repo.Search(ctx, ProfileSearch{ExcludeUserID: alice.UserID, Limit: 15})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].Username)
	})
}

func TestProfileRepository_ToggleFollow(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	alice := createAccount(t, db, "alice")
	bob := createAccount(t, db, "bob")

	// first toggle follows
	following, err := repo.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, following)

	isFollowing, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, isFollowing)

	// the edge is directed
	isFollowing, err = repo.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, isFollowing)

	followers, followingCount, err := repo.CountEdges(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
	assert.Equal(t, int64(0), followingCount)

	// second toggle unfollows
	following, err = repo.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, following)

	isFollowing, err = repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, isFollowing)

	followers, _, err = repo.CountEdges(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), followers)
}

func TestProfileRepository_FollowersAndFollowing(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	alice := createAccount(t, db, "alice")
	bob := createAccount(t, db, "bob")
	carol := createAccount(t, db, "carol")

	// alice and carol follow bob; bob follows carol
	_, err := repo.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	_, err = repo.ToggleFollow(ctx, carol, bob)
	require.NoError(t, err)
	_, err = repo.ToggleFollow(ctx, bob, carol)
	require.NoError(t, err)

	followers, err := repo.Followers(ctx, bob.ID, 15, 0)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "alice", followers[0].Username)
	assert.Equal(t, "carol", followers[1].Username)

	following, err := repo.Following(ctx, bob.ID, 15, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "carol", following[0].Username)

	ids, err := repo.FolloweeIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{carol.ID}, ids)
}

func TestProfileRepository_DeleteCascade(t *testing.T) {
	db := newTestDB(t)
	profileRepo := NewProfileRepository(db)
	postRepo := NewPostRepository(db)
	tagRepo := NewTagRepository(db)
	ctx := context.Background()

	alice := createAccount(t, db, "alice")
	bob := createAccount(t, db, "bob")

	goTag, err := tagRepo.GetOrCreate(ctx, "golang")
	require.NoError(t, err)

	alicePost := &models.Post{Text: "from alice", AuthorID: alice.ID, Tags: []models.Tag{*goTag}}
	require.NoError(t, postRepo.Create(ctx, alicePost))
	bobPost := &models.Post{Text: "from bob", AuthorID: bob.ID, Tags: []models.Tag{*goTag}}
	require.NoError(t, postRepo.Create(ctx, bobPost))

	_, err = profileRepo.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	_, err = profileRepo.ToggleFollow(ctx, bob, alice)
	require.NoError(t, err)

	require.NoError(t, profileRepo.DeleteCascade(ctx, alice))

	// profile and user are gone
	var profileCount, userCount int64
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", alice.ID).Count(&profileCount).Error)
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", alice.UserID).Count(&userCount).Error)
	assert.Zero(t, profileCount)
	assert.Zero(t, userCount)

	// alice's posts are gone, bob's remain
	var postCount int64
	require.NoError(t, db.Unscoped().Model(&models.Post{}).Where("author_id = ?", alice.ID).Count(&postCount).Error)
	assert.Zero(t, postCount)
	require.NoError(t, db.Model(&models.Post{}).Where("author_id = ?", bob.ID).Count(&postCount).Error)
	assert.Equal(t, int64(1), postCount)

	// edges touching alice are gone
	var edgeCount int64
	require.NoError(t, db.Table("profile_followers").
		Where("profile_id = ? OR follower_id = ?", alice.ID, alice.ID).
		Count(&edgeCount).Error)
	assert.Zero(t, edgeCount)

	// the shared tag row survives for bob's post
	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Where("tag = ?", "golang").Count(&tagCount).Error)
	assert.Equal(t, int64(1), tagCount)
}

func TestProfileRepository_DeleteCascadeDropsCachedPostDetail(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	profileRepo := NewProfileRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	alice := createAccount(t, db, "alice")
	post := &models.Post{Text: "soon gone", AuthorID: alice.ID}
	require.NoError(t, postRepo.Create(ctx, post))

	// Warm the detail cache.
	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "soon gone", got.Text)
	require.True(t, mr.Exists(cache.PostKey(post.ID)))

	require.NoError(t, profileRepo.DeleteCascade(ctx, alice))
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))

	// A fresh lookup must miss the cache and report the post gone.
	_, err = postRepo.GetByID(ctx, post.ID)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
