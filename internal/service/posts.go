package service

import (
	"context"
	"path"

	"github.com/Dan9191/blog-service/internal/apperr"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/validation"
)

// KeepImage is sent by clients that did not pick a new image on edit
const KeepImage = "undefined"

// PostInput carries the editable post fields
type PostInput struct {
	Title    string
	Content  string
	ImageURL string
}

// CreatePost stores a post owned by the caller
func (s *Service) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	callerID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.Post(in.Title, in.Content); err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByID(ctx, callerID)
	if err != nil {
		return nil, storeErr(err, apperr.Unauthenticated, "Invalid user")
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		Creator:  user.ID,
	}
	if err := s.createLinkedPost(ctx, user.ID, post); err != nil {
		return nil, apperr.Wrap(err, "Internal server error")
	}

	s.log.Infof("Post %s created by user %s", post.ID.Hex(), user.ID.Hex())
	return post, nil
}

// Posts returns one page of posts, newest first. Pages start at 1.
func (s *Service) Posts(ctx context.Context, page int) (*models.PostPage, error) {
	if _, err := requireAuth(ctx); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	total, err := s.store.CountPosts(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "Internal server error")
	}
	posts, err := s.store.ListPosts(ctx, int64(page-1)*PageSize, PageSize)
	if err != nil {
		return nil, apperr.Wrap(err, "Internal server error")
	}
	return &models.PostPage{Posts: posts, TotalPosts: total}, nil
}

// Post returns a single post
func (s *Service) Post(ctx context.Context, id string) (*models.Post, error) {
	if _, err := requireAuth(ctx); err != nil {
		return nil, err
	}
	return s.loadPost(ctx, id)
}

func (s *Service) loadPost(ctx context.Context, id string) (*models.Post, error) {
	postID, err := parseID(id, "no post found")
	if err != nil {
		return nil, err
	}
	post, err := s.store.FindPostByID(ctx, postID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound, "no post found")
	}
	return post, nil
}

// UpdatePost edits a post owned by the caller. Ownership is checked before
// field validation.
func (s *Service) UpdatePost(ctx context.Context, id string, in PostInput) (*models.Post, error) {
	callerID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(callerID, post.Creator); err != nil {
		return nil, err
	}
	if err := validation.Post(in.Title, in.Content); err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Content = in.Content
	if in.ImageURL != KeepImage {
		post.ImageURL = in.ImageURL
	}
	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, storeErr(err, apperr.NotFound, "no post found")
	}

	s.log.Infof("Post %s updated", post.ID.Hex())
	return post, nil
}

// DeletePost removes a post owned by the caller, its image and its comments
func (s *Service) DeletePost(ctx context.Context, id string) (bool, error) {
	callerID, err := requireAuth(ctx)
	if err != nil {
		return false, err
	}
	post, err := s.loadPost(ctx, id)
	if err != nil {
		return false, err
	}
	if err := requireOwner(callerID, post.Creator); err != nil {
		return false, err
	}

	if err := s.images.Clear(post.ImageURL); err != nil {
		s.log.WithError(err).Warnf("Failed to clear image of post %s", post.ID.Hex())
	}
	if err := s.deleteLinkedPost(ctx, callerID, post.ID); err != nil {
		return false, storeErr(err, apperr.NotFound, "no post found")
	}
	if n, err := s.store.DeleteCommentsByPost(ctx, post.ID); err != nil {
		s.log.WithError(err).Warnf("Failed to delete comments of post %s", post.ID.Hex())
	} else if n > 0 {
		s.log.Infof("Deleted %d comments of post %s", n, post.ID.Hex())
	}

	s.log.Infof("Post %s deleted", post.ID.Hex())
	return true, nil
}

// OwnsImage reports whether one of the caller's posts references imagePath
func (s *Service) OwnsImage(ctx context.Context, imagePath string) (bool, error) {
	callerID, err := requireAuth(ctx)
	if err != nil {
		return false, err
	}
	user, err := s.store.FindUserByID(ctx, callerID)
	if err != nil {
		return false, storeErr(err, apperr.Unauthenticated, "Invalid user")
	}
	posts, err := s.PostsOf(ctx, user)
	if err != nil {
		return false, err
	}
	name := path.Base(imagePath)
	for _, post := range posts {
		if post.ImageURL != "" && path.Base(post.ImageURL) == name {
			return true, nil
		}
	}
	return false, nil
}
