package service

import (
	"context"

	"github.com/Dan9191/blog-service/internal/apperr"
	"github.com/Dan9191/blog-service/internal/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// requireAuth returns the caller's id or Unauthenticated
func requireAuth(ctx context.Context) (primitive.ObjectID, error) {
	info := auth.FromContext(ctx)
	if !info.IsAuth {
		return primitive.NilObjectID, apperr.New(apperr.Unauthenticated, "Not Authenticated")
	}
	id, err := primitive.ObjectIDFromHex(info.UserID)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Unauthenticated, "Not Authenticated")
	}
	return id, nil
}

// requireOwner fails with Forbidden unless caller created the record
func requireOwner(caller, owner primitive.ObjectID) error {
	if caller != owner {
		return apperr.New(apperr.Forbidden, "Not Authorized")
	}
	return nil
}
