package service

import (
	"context"

	"github.com/Dan9191/blog-service/internal/apperr"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/validation"
)

func commentContent(content string) error {
	var errs validation.Errors
	errs.Add(validation.Content(content))
	return errs.Err()
}

// CreateComment attaches a comment by the caller to a post
func (s *Service) CreateComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	callerID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := commentContent(content); err != nil {
		return nil, err
	}
	if _, err := s.store.FindUserByID(ctx, callerID); err != nil {
		return nil, storeErr(err, apperr.Unauthenticated, "Invalid user")
	}

	comment := &models.Comment{
		Content: content,
		Creator: callerID,
		Post:    post.ID,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, apperr.Wrap(err, "Internal server error")
	}

	s.log.Infof("Comment %s created on post %s", comment.ID.Hex(), post.ID.Hex())
	return comment, nil
}

// Comments lists the comments of a post, oldest first
func (s *Service) Comments(ctx context.Context, postID string) ([]*models.Comment, error) {
	if _, err := requireAuth(ctx); err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.CommentsOf(ctx, post)
}

// CommentsOf loads the comments of an already resolved post
func (s *Service) CommentsOf(ctx context.Context, post *models.Post) ([]*models.Comment, error) {
	comments, err := s.store.ListCommentsByPost(ctx, post.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "Internal server error")
	}
	return comments, nil
}

func (s *Service) loadComment(ctx context.Context, id string) (*models.Comment, error) {
	commentID, err := parseID(id, "no comment found")
	if err != nil {
		return nil, err
	}
	comment, err := s.store.FindCommentByID(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound, "no comment found")
	}
	return comment, nil
}

// UpdateComment edits a comment owned by the caller
func (s *Service) UpdateComment(ctx context.Context, id, content string) (*models.Comment, error) {
	callerID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(callerID, comment.Creator); err != nil {
		return nil, err
	}
	if err := commentContent(content); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, storeErr(err, apperr.NotFound, "no comment found")
	}
	s.log.Infof("Comment %s updated", comment.ID.Hex())
	return comment, nil
}

// DeleteComment removes a comment owned by the caller
func (s *Service) DeleteComment(ctx context.Context, id string) (bool, error) {
	callerID, err := requireAuth(ctx)
	if err != nil {
		return false, err
	}
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return false, err
	}
	if err := requireOwner(callerID, comment.Creator); err != nil {
		return false, err
	}
	if err := s.store.DeleteComment(ctx, comment.ID); err != nil {
		return false, storeErr(err, apperr.NotFound, "no comment found")
	}
	s.log.Infof("Comment %s deleted", comment.ID.Hex())
	return true, nil
}

// PostByID loads the parent post of a comment for nested fields
func (s *Service) PostByID(ctx context.Context, id string) (*models.Post, error) {
	return s.loadPost(ctx, id)
}
