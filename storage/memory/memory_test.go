package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/storage"
)

func newUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	s := New()
	newUser(t, s, "leo")
	err := s.CreateUser(context.Background(), &models.User{Username: "leo"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestPostsOrderedNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := newUser(t, s, "leo")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreatePost(ctx, &models.Post{
			Text:      fmt.Sprintf("post %d", i),
			AuthorID:  author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	posts, err := s.Posts(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "post 2", posts[0].Text)
	assert.Equal(t, "post 0", posts[2].Text)
	// authors come hydrated like a preload would
	assert.Equal(t, "leo", posts[0].Author.Username)
}

func TestPostsOffsetLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := newUser(t, s, "leo")
	for i := 0; i < 13; i++ {
		require.NoError(t, s.CreatePost(ctx, &models.Post{Text: "t", AuthorID: author.ID}))
	}

	total, err := s.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)

	first, err := s.Posts(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, first, 10)

	second, err := s.Posts(ctx, 10, 10)
	require.NoError(t, err)
	assert.Len(t, second, 3)
}

func TestDeleteGroupKeepsPosts(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := newUser(t, s, "leo")

	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, s.CreateGroup(ctx, group))

	post := &models.Post{Text: "meow", AuthorID: author.ID, GroupID: &group.ID}
	require.NoError(t, s.CreatePost(ctx, post))

	require.NoError(t, s.DeleteGroup(ctx, group.ID))

	got, err := s.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
	assert.Nil(t, got.Group)

	_, err = s.GroupBySlug(ctx, "cats")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := newUser(t, s, "reader")
	author := newUser(t, s, "writer")

	require.NoError(t, s.Follow(ctx, user.ID, author.ID))
	require.NoError(t, s.Follow(ctx, user.ID, author.ID))

	count, err := s.CountFollowers(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSelfFollowRefused(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := newUser(t, s, "narcissus")

	err := s.Follow(ctx, user.ID, user.ID)
	assert.ErrorIs(t, err, storage.ErrSelfFollow)

	count, err := s.CountFollowing(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnfollowMissingEdge(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := newUser(t, s, "reader")
	author := newUser(t, s, "writer")

	err := s.Unfollow(ctx, user.ID, author.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Follow(ctx, user.ID, author.ID))
	require.NoError(t, s.Unfollow(ctx, user.ID, author.ID))

	following, err := s.IsFollowing(ctx, user.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestConcurrentFollowsCreateOneEdge(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := newUser(t, s, "reader")
	author := newUser(t, s, "writer")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Follow(ctx, user.ID, author.ID))
		}()
	}
	wg.Wait()

	count, err := s.CountFollowers(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFeedListsFollowedAuthorsOnly(t *testing.T) {
	ctx := context.Background()
	s := New()
	reader := newUser(t, s, "reader")
	followed := newUser(t, s, "followed")
	other := newUser(t, s, "other")

	require.NoError(t, s.Follow(ctx, reader.ID, followed.ID))
	require.NoError(t, s.CreatePost(ctx, &models.Post{Text: "in feed", AuthorID: followed.ID}))
	require.NoError(t, s.CreatePost(ctx, &models.Post{Text: "not in feed", AuthorID: other.ID}))
	require.NoError(t, s.CreatePost(ctx, &models.Post{Text: "own post", AuthorID: reader.ID}))

	total, err := s.CountPostsByFollowedAuthors(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	posts, err := s.PostsByFollowedAuthors(ctx, reader.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "in feed", posts[0].Text)
}

func TestCommentsByPostNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := newUser(t, s, "leo")
	post := &models.Post{Text: "hi", AuthorID: author.ID}
	require.NoError(t, s.CreatePost(ctx, post))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 2; i++ {
		require.NoError(t, s.CreateComment(ctx, &models.Comment{
			PostID:    post.ID,
			AuthorID:  author.ID,
			Text:      fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	comments, err := s.CommentsByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "comment 1", comments[0].Text)
	assert.Equal(t, "leo", comments[0].Author.Username)
}

func TestCreateCommentRequiresPost(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := newUser(t, s, "leo")

	err := s.CreateComment(ctx, &models.Comment{PostID: 999, AuthorID: author.ID, Text: "hi"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdatePostKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := newUser(t, s, "leo")

	created := time.Now().Add(-time.Hour)
	post := &models.Post{Text: "before", AuthorID: author.ID, CreatedAt: created}
	require.NoError(t, s.CreatePost(ctx, post))

	post.Text = "after"
	require.NoError(t, s.UpdatePost(ctx, post))

	got, err := s.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Text)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.Equal(t, author.ID, got.AuthorID)
}
