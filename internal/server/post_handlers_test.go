package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createAccount(t, "alice")

	t.Run("success with tags", func(t *testing.T) {
		var got PostDetail
		resp := ts.doJSON(t, http.MethodPost, "/api/posts/", token, map[string]any{
			"text": "first post",
			"tags": []string{"golang", "golang", "music"},
		}, &got)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "first post", got.Text)
		assert.Equal(t, "alice", got.Author.Username)
		assert.Equal(t, []string{"golang", "music"}, got.Tags)
	})

	t.Run("empty text is 400", func(t *testing.T) {
		var got map[string]any
		resp := ts.doJSON(t, http.MethodPost, "/api/posts/", token, map[string]any{
			"text": "",
		}, &got)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", got["code"])
	})

	t.Run("overlong text is 400", func(t *testing.T) {
		resp := ts.doJSON(t, http.MethodPost, "/api/posts/", token, map[string]any{
			"text": strings.Repeat("a", 501),
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unauthenticated is 401", func(t *testing.T) {
		resp := ts.doJSON(t, http.MethodPost, "/api/posts/", "", map[string]any{
			"text": "anonymous",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGetPosts_SummariesAndPreview(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createAccount(t, "alice")

	longText := strings.Repeat("a", 30)
	resp := ts.doJSON(t, http.MethodPost, "/api/posts/", token, map[string]any{
		"text": longText,
		"tags": []string{"golang"},
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = ts.doJSON(t, http.MethodPost, "/api/posts/", token, map[string]any{
		"text": "short",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got []PostSummary
	resp = ts.doJSON(t, http.MethodGet, "/api/posts/", "", nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got, 2)

	// long bodies are cut to a 20-character preview with an ellipsis
	assert.Equal(t, strings.Repeat("a", 20)+"...", got[0].TextPreview)
	assert.Equal(t, []string{"golang"}, got[0].Tags)
	// short bodies pass through untouched
	assert.Equal(t, "short", got[1].TextPreview)
	assert.Equal(t, "alice", got[1].Author.Username)
}

func TestGetPosts_Filters(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.createAccount(t, "alice")
	_, bobToken := ts.createAccount(t, "bob")

	resp := ts.doJSON(t, http.MethodPost, "/api/posts/", aliceToken, map[string]any{
		"text": "learning generics",
		"tags": []string{"golang"},
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = ts.doJSON(t, http.MethodPost, "/api/posts/", bobToken, map[string]any{
		"text": "concert tonight",
		"tags": []string{"music"},
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("search matches body", func(t *testing.T) {
		var got []PostSummary
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/?search=generics", "", nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, got, 1)
		assert.Equal(t, "alice", got[0].Author.Username)
	})

	t.Run("search matches author username", func(t *testing.T) {
		var got []PostSummary
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/?search=bob", "", nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].Author.Username)
	})

	t.Run("tag filter is exact", func(t *testing.T) {
		var got []PostSummary
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/?tag=music", "", nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].Author.Username)
	})

	t.Run("author filter scopes to one profile", func(t *testing.T) {
		var all []PostSummary
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/", "", nil, &all)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, all, 2)

		var authorID uint
		for _, p := range all {
			if p.Author.Username == "bob" {
				authorID = p.Author.ID
			}
		}
		require.NotZero(t, authorID)

		var got []PostSummary
		resp = ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/posts/?author=%d", authorID), "", nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].Author.Username)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		var got []PostSummary
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/?search=zzz", "", nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, got)
	})
}

func TestGetPost_Detail(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createAccount(t, "alice")

	var created PostDetail
	resp := ts.doJSON(t, http.MethodPost, "/api/posts/", token, map[string]any{
		"text": strings.Repeat("b", 100),
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("detail returns the full body", func(t *testing.T) {
		var got PostDetail
		resp := ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.ID), "", nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, strings.Repeat("b", 100), got.Text)
	})

	t.Run("missing is 404", func(t *testing.T) {
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/99999", "", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("junk id is 400", func(t *testing.T) {
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/banana", "", nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdatePost(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.createAccount(t, "alice")
	_, bobToken := ts.createAccount(t, "bob")

	var created PostDetail
	resp := ts.doJSON(t, http.MethodPost, "/api/posts/", aliceToken, map[string]any{
		"text": "original",
		"tags": []string{"golang"},
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postURL := fmt.Sprintf("/api/posts/%d", created.ID)

	t.Run("author can edit text keeping tags", func(t *testing.T) {
		var got PostDetail
		resp := ts.doJSON(t, http.MethodPatch, postURL, aliceToken, map[string]any{
			"text": "edited",
		}, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "edited", got.Text)
		assert.Equal(t, []string{"golang"}, got.Tags)
	})

	t.Run("tags in the body replace the set", func(t *testing.T) {
		var got PostDetail
		resp := ts.doJSON(t, http.MethodPatch, postURL, aliceToken, map[string]any{
			"tags": []string{"music"},
		}, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"music"}, got.Tags)
		assert.Equal(t, "edited", got.Text)
	})

	t.Run("non-author is 403", func(t *testing.T) {
		var got map[string]any
		resp := ts.doJSON(t, http.MethodPatch, postURL, bobToken, map[string]any{
			"text": "hijacked",
		}, &got)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "PERMISSION_DENIED", got["code"])
	})
}

func TestDeletePost(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.createAccount(t, "alice")
	_, bobToken := ts.createAccount(t, "bob")

	var created PostDetail
	resp := ts.doJSON(t, http.MethodPost, "/api/posts/", aliceToken, map[string]any{
		"text": "delete me",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postURL := fmt.Sprintf("/api/posts/%d", created.ID)

	t.Run("non-author is 403", func(t *testing.T) {
		resp := ts.doJSON(t, http.MethodDelete, postURL, bobToken, nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("author deletes", func(t *testing.T) {
		resp := ts.doJSON(t, http.MethodDelete, postURL, aliceToken, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = ts.doJSON(t, http.MethodGet, postURL, "", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestScopedFeeds(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.createAccount(t, "alice")
	_, bobToken := ts.createAccount(t, "bob")
	_, carolToken := ts.createAccount(t, "carol")

	resp := ts.doJSON(t, http.MethodPost, "/api/posts/", aliceToken, map[string]any{
		"text": "from alice",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = ts.doJSON(t, http.MethodPost, "/api/posts/", bobToken, map[string]any{
		"text": "from bob",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// carol follows alice only
	resp = ts.doJSON(t, http.MethodPost,
		fmt.Sprintf("/api/profiles/%d/follow", alice.ID), carolToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("my_posts lists only own posts", func(t *testing.T) {
		var got []PostSummary
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/my_posts", aliceToken, nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, got, 1)
		assert.Equal(t, "alice", got[0].Author.Username)
	})

	t.Run("followers_posts lists followees posts", func(t *testing.T) {
		var got []PostSummary
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/followers_posts", carolToken, nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, got, 1)
		assert.Equal(t, "alice", got[0].Author.Username)
	})

	t.Run("empty followee set is an empty feed", func(t *testing.T) {
		var got []PostSummary
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/followers_posts", bobToken, nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, got)
	})

	t.Run("feeds require authentication", func(t *testing.T) {
		resp := ts.doJSON(t, http.MethodGet, "/api/posts/my_posts", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
