package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/postline/models"
)

func TestFollowCreatesSingleEdge(t *testing.T) {
	e := newEnv(t)
	reader := e.user(t, "reader")
	writer := e.user(t, "writer")
	cookie := sessionCookie(t, reader)

	w := e.get("/profile/writer/follow/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/writer/", w.Header().Get("Location"))

	// re-following is absorbed, not rejected
	w = e.get("/profile/writer/follow/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)

	count, err := e.store.CountFollowers(context.Background(), writer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSelfFollowCreatesNothing(t *testing.T) {
	e := newEnv(t)
	reader := e.user(t, "reader")

	w := e.get("/profile/reader/follow/", sessionCookie(t, reader))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/reader/", w.Header().Get("Location"))

	count, err := e.store.CountFollowing(context.Background(), reader.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnfollowMissingEdgeIs404(t *testing.T) {
	e := newEnv(t)
	reader := e.user(t, "reader")
	e.user(t, "writer")

	w := e.get("/profile/writer/unfollow/", sessionCookie(t, reader))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnfollowRemovesEdge(t *testing.T) {
	e := newEnv(t)
	reader := e.user(t, "reader")
	writer := e.user(t, "writer")
	require.NoError(t, e.store.Follow(context.Background(), reader.ID, writer.ID))

	w := e.get("/profile/writer/unfollow/", sessionCookie(t, reader))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/writer/", w.Header().Get("Location"))

	count, err := e.store.CountFollowers(context.Background(), writer.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFeedRequiresLoginAndFiltersAuthors(t *testing.T) {
	e := newEnv(t)

	w := e.get("/follow/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/follow/", w.Header().Get("Location"))

	reader := e.user(t, "reader")
	followed := e.user(t, "followed")
	other := e.user(t, "other")
	ctx := context.Background()

	require.NoError(t, e.store.Follow(ctx, reader.ID, followed.ID))
	require.NoError(t, e.store.CreatePost(ctx, &models.Post{Text: "from followed author", AuthorID: followed.ID}))
	require.NoError(t, e.store.CreatePost(ctx, &models.Post{Text: "from a stranger", AuthorID: other.ID}))
	require.NoError(t, e.store.CreatePost(ctx, &models.Post{Text: "my own words", AuthorID: reader.ID}))

	w = e.get("/follow/", sessionCookie(t, reader))
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "from followed author")
	assert.NotContains(t, body, "from a stranger")
	assert.NotContains(t, body, "my own words")
}

func TestProfileShowsFollowState(t *testing.T) {
	e := newEnv(t)
	reader := e.user(t, "reader")
	writer := e.user(t, "writer")
	require.NoError(t, e.store.Follow(context.Background(), reader.ID, writer.ID))

	w := e.get("/profile/writer/", sessionCookie(t, reader))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/profile/writer/unfollow/")
}
