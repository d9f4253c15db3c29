// Package memory holds an in-memory Storage used by tests. It mirrors
// the semantics of the MySQL store, including the uniqueness guarantees
// the database would otherwise enforce.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/storage"
)

type followKey struct {
	userID   uint
	authorID uint
}

type Store struct {
	mu sync.RWMutex

	users    map[uint]*models.User
	groups   map[uint]*models.Group
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	follows  map[followKey]*models.Follow

	nextUserID    uint
	nextGroupID   uint
	nextPostID    uint
	nextCommentID uint
	nextFollowID  uint
}

func New() *Store {
	return &Store{
		users:    make(map[uint]*models.User),
		groups:   make(map[uint]*models.Group),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
		follows:  make(map[followKey]*models.Follow),
	}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return storage.ErrDuplicate
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.Slug == group.Slug {
			return storage.ErrDuplicate
		}
	}
	s.nextGroupID++
	group.ID = s.nextGroupID
	cp := *group
	s.groups[group.ID] = &cp
	return nil
}

func (s *Store) GroupByID(ctx context.Context, id uint) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *group
	return &cp, nil
}

func (s *Store) GroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, group := range s.groups {
		if group.Slug == slug {
			cp := *group
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) Groups(ctx context.Context) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.Group, 0, len(s.groups))
	for _, group := range s.groups {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Title) < strings.ToLower(groups[j].Title)
	})
	return groups, nil
}

func (s *Store) DeleteGroup(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.groups, id)
	// posts keep living, only the reference is cleared
	for _, post := range s.posts {
		if post.GroupID != nil && *post.GroupID == id {
			post.GroupID = nil
		}
	}
	return nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPostID++
	post.ID = s.nextPostID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	cp := *post
	cp.Author = models.User{}
	cp.Group = nil
	s.posts[post.ID] = &cp
	return nil
}

func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[post.ID]
	if !ok {
		return storage.ErrNotFound
	}
	stored.Text = post.Text
	stored.GroupID = post.GroupID
	stored.Image = post.Image
	return nil
}

func (s *Store) PostByID(ctx context.Context, id uint) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := s.hydrate(*post)
	return &cp, nil
}

// hydrate fills the Author/Group associations the way Preload would.
// Callers must hold at least the read lock.
func (s *Store) hydrate(post models.Post) models.Post {
	if author, ok := s.users[post.AuthorID]; ok {
		post.Author = *author
	}
	if post.GroupID != nil {
		if group, ok := s.groups[*post.GroupID]; ok {
			cp := *group
			post.Group = &cp
		}
	}
	return post
}

func (s *Store) listPosts(match func(*models.Post) bool, offset, limit int) []models.Post {
	var posts []models.Post
	for _, post := range s.posts {
		if match(post) {
			posts = append(posts, s.hydrate(*post))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if offset >= len(posts) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

func (s *Store) countPosts(match func(*models.Post) bool) int64 {
	var total int64
	for _, post := range s.posts {
		if match(post) {
			total++
		}
	}
	return total
}

func matchAll(*models.Post) bool { return true }

func (s *Store) Posts(ctx context.Context, offset, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPosts(matchAll, offset, limit), nil
}

func (s *Store) CountPosts(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countPosts(matchAll), nil
}

func (s *Store) PostsByGroup(ctx context.Context, groupID uint, offset, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPosts(func(p *models.Post) bool {
		return p.GroupID != nil && *p.GroupID == groupID
	}, offset, limit), nil
}

func (s *Store) CountPostsByGroup(ctx context.Context, groupID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countPosts(func(p *models.Post) bool {
		return p.GroupID != nil && *p.GroupID == groupID
	}), nil
}

func (s *Store) PostsByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPosts(func(p *models.Post) bool { return p.AuthorID == authorID }, offset, limit), nil
}

func (s *Store) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countPosts(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (s *Store) followedAuthorsLocked(userID uint) map[uint]bool {
	authors := make(map[uint]bool)
	for key := range s.follows {
		if key.userID == userID {
			authors[key.authorID] = true
		}
	}
	return authors
}

func (s *Store) PostsByFollowedAuthors(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authors := s.followedAuthorsLocked(userID)
	return s.listPosts(func(p *models.Post) bool { return authors[p.AuthorID] }, offset, limit), nil
}

func (s *Store) CountPostsByFollowedAuthors(ctx context.Context, userID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authors := s.followedAuthorsLocked(userID)
	return s.countPosts(func(p *models.Post) bool { return authors[p.AuthorID] }), nil
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return storage.ErrNotFound
	}
	s.nextCommentID++
	comment.ID = s.nextCommentID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	cp := *comment
	cp.Author = models.User{}
	s.comments[comment.ID] = &cp
	return nil
}

func (s *Store) CommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var comments []models.Comment
	for _, comment := range s.comments {
		if comment.PostID == postID {
			cp := *comment
			if author, ok := s.users[comment.AuthorID]; ok {
				cp.Author = *author
			}
			comments = append(comments, cp)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// Follow serializes under the store mutex, which stands in for the
// database unique index: the second of two simultaneous follows sees
// the existing edge and succeeds without inserting.
func (s *Store) Follow(ctx context.Context, userID, authorID uint) error {
	if userID == authorID {
		return storage.ErrSelfFollow
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := followKey{userID: userID, authorID: authorID}
	if _, ok := s.follows[key]; ok {
		return nil
	}
	s.nextFollowID++
	s.follows[key] = &models.Follow{
		ID:        s.nextFollowID,
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *Store) Unfollow(ctx context.Context, userID, authorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := followKey{userID: userID, authorID: authorID}
	if _, ok := s.follows[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.follows, key)
	return nil
}

func (s *Store) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.follows[followKey{userID: userID, authorID: authorID}]
	return ok, nil
}

func (s *Store) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for key := range s.follows {
		if key.authorID == authorID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for key := range s.follows {
		if key.userID == userID {
			count++
		}
	}
	return count, nil
}
