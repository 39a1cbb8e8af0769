package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix   = "profile:%s"
	PostKeyPrefix      = "post:%d"
	PostsListKeyPrefix = "posts:list:p%d:s%d"
)

const (
	ProfileTTL   = 5 * time.Minute
	PostTTL      = 30 * time.Minute
	PostsListTTL = 1 * time.Minute
)

// ProfileKey caches profile detail by username, the public lookup key.
func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// PostsListKey caches only unfiltered list pages; searches and scoped
// feeds always hit the database.
func PostsListKey(page, pageSize int) string {
	return fmt.Sprintf(PostsListKeyPrefix, page, pageSize)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	InvalidatePostsList(ctx)
}

// InvalidatePostsList drops every cached list page. Pages are keyed by
// page/size so a SCAN over the prefix is needed.
func InvalidatePostsList(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "posts:list:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
