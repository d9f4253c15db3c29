package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/storage"
)

// postOrder keeps listings deterministic when two posts share a timestamp.
const postOrder = "created_at DESC, id DESC"

// Store is the MySQL-backed storage implementation.
type Store struct {
	db *gorm.DB
}

// New wraps an initialized gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrDuplicate
	default:
		return err
	}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	return translate(s.db.WithContext(ctx).Create(group).Error)
}

func (s *Store) GroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (s *Store) GroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (s *Store) Groups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.WithContext(ctx).Order("title").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// DeleteGroup clears the group reference on dependent posts before
// removing the group itself, inside one transaction. FK constraints are
// disabled at migration time, so SET NULL happens here explicitly.
func (s *Store) DeleteGroup(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("group_id = ?", id).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(s.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error)
}

// UpdatePost writes the mutable columns only; created_at never changes.
func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	return nil
}

func (s *Store) PostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *Store) Posts(ctx context.Context, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").
		Order(postOrder).Offset(offset).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) CountPosts(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error
	return total, err
}

func (s *Store) PostsByGroup(ctx context.Context, groupID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").
		Where("group_id = ?", groupID).
		Order(postOrder).Offset(offset).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) CountPostsByGroup(ctx context.Context, groupID uint) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("group_id = ?", groupID).Count(&total).Error
	return total, err
}

func (s *Store) PostsByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").
		Where("author_id = ?", authorID).
		Order(postOrder).Offset(offset).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ?", authorID).Count(&total).Error
	return total, err
}

func (s *Store) PostsByFollowedAuthors(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").
		Joins("JOIN follows ON follows.author_id = posts.author_id AND follows.user_id = ?", userID).
		Order(postOrder).Offset(offset).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) CountPostsByFollowedAuthors(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Joins("JOIN follows ON follows.author_id = posts.author_id AND follows.user_id = ?", userID).
		Count(&total).Error
	return total, err
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.db.WithContext(ctx).Omit("Author").Create(comment).Error)
}

func (s *Store) CommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Follow inserts the edge and lets the unique index absorb races: a
// duplicate-key failure from a concurrent or repeated follow is the
// idempotent success case, not an error.
func (s *Store) Follow(ctx context.Context, userID, authorID uint) error {
	if userID == authorID {
		return storage.ErrSelfFollow
	}
	err := s.db.WithContext(ctx).Create(&models.Follow{UserID: userID, AuthorID: authorID}).Error
	if err != nil && errors.Is(translate(err), storage.ErrDuplicate) {
		return nil
	}
	return err
}

func (s *Store) Unfollow(ctx context.Context, userID, authorID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error
	return count > 0, err
}

func (s *Store) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (s *Store) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
