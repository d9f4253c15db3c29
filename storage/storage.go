package storage

import (
	"context"
	"errors"

	"github.com/avolkov/postline/models"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrSelfFollow is returned when a user tries to follow themselves.
	ErrSelfFollow = errors.New("self-follow is not allowed")
)

// Storage is the repository boundary for the whole application. Each
// listing has its own explicit query function; handlers never build
// queries themselves.
type Storage interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id uint) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)

	// Groups
	CreateGroup(ctx context.Context, group *models.Group) error
	GroupByID(ctx context.Context, id uint) (*models.Group, error)
	GroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	Groups(ctx context.Context) ([]models.Group, error)
	// DeleteGroup removes a group and clears the group reference on its
	// posts; the posts themselves survive.
	DeleteGroup(ctx context.Context, id uint) error

	// Posts, newest first. Offset/limit come from the paginator; the
	// matching Count method feeds it.
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, post *models.Post) error
	PostByID(ctx context.Context, id uint) (*models.Post, error)
	Posts(ctx context.Context, offset, limit int) ([]models.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	PostsByGroup(ctx context.Context, groupID uint, offset, limit int) ([]models.Post, error)
	CountPostsByGroup(ctx context.Context, groupID uint) (int64, error)
	PostsByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]models.Post, error)
	CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error)
	// PostsByFollowedAuthors lists posts written by every author the
	// given user follows, newest first.
	PostsByFollowedAuthors(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error)
	CountPostsByFollowedAuthors(ctx context.Context, userID uint) (int64, error)

	// Comments, newest first.
	CreateComment(ctx context.Context, comment *models.Comment) error
	CommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error)

	// Follow edges. Follow is idempotent: a duplicate edge is absorbed,
	// not reported. Unfollow of a missing edge returns ErrNotFound.
	Follow(ctx context.Context, userID, authorID uint) error
	Unfollow(ctx context.Context, userID, authorID uint) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}
