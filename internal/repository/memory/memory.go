// Package memory is an in-process document store with the same contract as
// the MongoDB repository. It backs local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store keeps copies of every record so callers never share memory with it
type Store struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]*models.User
	posts    map[primitive.ObjectID]*models.Post
	comments map[primitive.ObjectID]*models.Comment
	seq      map[primitive.ObjectID]int64
	next     int64
	now      func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]*models.User),
		posts:    make(map[primitive.ObjectID]*models.Post),
		comments: make(map[primitive.ObjectID]*models.Comment),
		seq:      make(map[primitive.ObjectID]int64),
		now:      time.Now,
	}
}

// SetClock replaces the time source used for server-assigned timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Store) newID() primitive.ObjectID {
	id := primitive.NewObjectID()
	s.next++
	s.seq[id] = s.next
	return id
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Posts = append([]primitive.ObjectID{}, u.Posts...)
	return &c
}

func copyPost(p *models.Post) *models.Post {
	c := *p
	return &c
}

func copyComment(cm *models.Comment) *models.Comment {
	c := *cm
	return &c
}

// CreateUser stores a new user and assigns its ID; emails are unique
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	user.ID = s.newID()
	if user.Posts == nil {
		user.Posts = []primitive.ObjectID{}
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

// FindUserByID retrieves a user by id
func (s *Store) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

// FindUserByEmail retrieves a user by email
func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

// UpdateUserStatus sets the status and returns the updated user
func (s *Store) UpdateUserStatus(_ context.Context, id primitive.ObjectID, status string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Status = status
	return copyUser(u), nil
}

// AddUserPost appends postID to the user's post list
func (s *Store) AddUserPost(_ context.Context, userID, postID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Posts = append(u.Posts, postID)
	return nil
}

// RemoveUserPost drops postID from the user's post list
func (s *Store) RemoveUserPost(_ context.Context, userID, postID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := u.Posts[:0]
	for _, id := range u.Posts {
		if id != postID {
			kept = append(kept, id)
		}
	}
	u.Posts = kept
	return nil
}

// CreatePost stores a post and assigns its ID and timestamps
func (s *Store) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.timestamp()
	post.ID = s.newID()
	post.CreatedAt = now
	post.UpdatedAt = now
	s.posts[post.ID] = copyPost(post)
	return nil
}

// FindPostByID retrieves a post by id
func (s *Store) FindPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyPost(p), nil
}

// FindPostsByIDs retrieves posts in the order of ids, skipping missing ones
func (s *Store) FindPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			posts = append(posts, copyPost(p))
		}
	}
	return posts, nil
}

// ListPosts orders by createdAt desc, newest insertion first on ties
func (s *Store) ListPosts(_ context.Context, skip, limit int64) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return s.seq[all[i].ID] > s.seq[all[j].ID]
	})
	if skip < 0 {
		skip = 0
	}
	posts := []*models.Post{}
	for i := skip; i < int64(len(all)) && (limit <= 0 || i < skip+limit); i++ {
		posts = append(posts, copyPost(all[i]))
	}
	return posts, nil
}

// CountPosts returns the total number of posts
func (s *Store) CountPosts(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.posts)), nil
}

// UpdatePost writes the editable fields and refreshes UpdatedAt
func (s *Store) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.posts[post.ID]
	if !ok {
		return repository.ErrNotFound
	}
	post.UpdatedAt = s.timestamp()
	stored.Title = post.Title
	stored.Content = post.Content
	stored.ImageURL = post.ImageURL
	stored.UpdatedAt = post.UpdatedAt
	return nil
}

// DeletePost removes a post
func (s *Store) DeletePost(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.posts, id)
	delete(s.seq, id)
	return nil
}

// ListImageURLs returns every distinct image path referenced by a post
func (s *Store) ListImageURLs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	urls := []string{}
	for _, p := range s.posts {
		if p.ImageURL != "" && !seen[p.ImageURL] {
			seen[p.ImageURL] = true
			urls = append(urls, p.ImageURL)
		}
	}
	return urls, nil
}

// CreateComment stores a comment and assigns its ID and timestamps
func (s *Store) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.timestamp()
	comment.ID = s.newID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	s.comments[comment.ID] = copyComment(comment)
	return nil
}

// FindCommentByID retrieves a comment by id
func (s *Store) FindCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyComment(c), nil
}

// ListCommentsByPost returns the comments of a post, oldest first
func (s *Store) ListCommentsByPost(_ context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments := []*models.Comment{}
	for _, c := range s.comments {
		if c.Post == postID {
			comments = append(comments, copyComment(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return s.seq[comments[i].ID] < s.seq[comments[j].ID]
	})
	return comments, nil
}

// UpdateComment writes the content and refreshes UpdatedAt
func (s *Store) UpdateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.comments[comment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	comment.UpdatedAt = s.timestamp()
	stored.Content = comment.Content
	stored.UpdatedAt = comment.UpdatedAt
	return nil
}

// DeleteComment removes a comment
func (s *Store) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.comments, id)
	delete(s.seq, id)
	return nil
}

// DeleteCommentsByPost removes every comment of a post and returns how many
func (s *Store) DeleteCommentsByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, c := range s.comments {
		if c.Post == postID {
			delete(s.comments, id)
			delete(s.seq, id)
			n++
		}
	}
	return n, nil
}
