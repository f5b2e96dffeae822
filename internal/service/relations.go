package service

import (
	"context"

	"github.com/Dan9191/blog-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// createLinkedPost inserts post and then appends it to the owner's post list.
// The two writes are not atomic: if the second fails the post exists but is
// missing from the owner's list, and the error is returned as is.
func (s *Service) createLinkedPost(ctx context.Context, owner primitive.ObjectID, post *models.Post) error {
	if err := s.store.CreatePost(ctx, post); err != nil {
		return err
	}
	return s.store.AddUserPost(ctx, owner, post.ID)
}

// deleteLinkedPost removes post and then pulls it from the owner's post list.
// Same caveat as createLinkedPost: a failure after the first write leaves a
// dangling reference on the owner.
func (s *Service) deleteLinkedPost(ctx context.Context, owner primitive.ObjectID, postID primitive.ObjectID) error {
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return err
	}
	return s.store.RemoveUserPost(ctx, owner, postID)
}
