// Package service implements the blog operations: every operation checks the
// caller, loads its target, validates input and persists, in that order.
package service

import (
	"context"
	"errors"

	"github.com/Dan9191/blog-service/internal/apperr"
	"github.com/Dan9191/blog-service/internal/auth"
	"github.com/Dan9191/blog-service/internal/config"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize is the number of posts per page
const PageSize = 2

// Store is the document store the service persists to
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.User, error)
	AddUserPost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveUserPost(ctx context.Context, userID, postID primitive.ObjectID) error

	CreatePost(ctx context.Context, post *models.Post) error
	FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Post, error)
	ListPosts(ctx context.Context, skip, limit int64) ([]*models.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error

	CreateComment(ctx context.Context, comment *models.Comment) error
	FindCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListCommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

// ImageRemover releases the stored file behind an image path
type ImageRemover interface {
	Clear(path string) error
}

// Mailer sends account notifications
type Mailer interface {
	SendWelcome(to, name string) error
}

// Service handles business logic
type Service struct {
	store      Store
	tokens     *auth.Issuer
	images     ImageRemover
	mailer     Mailer
	log        *logrus.Logger
	bcryptCost int
}

// NewService initializes a new service
func NewService(store Store, tokens *auth.Issuer, images ImageRemover, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		store:      store,
		tokens:     tokens,
		images:     images,
		log:        log,
		bcryptCost: cfg.BcryptCost,
	}
}

// UseMailer enables welcome mails after signup
func (s *Service) UseMailer(m Mailer) {
	s.mailer = m
}

// parseID turns an outward id into an ObjectID; malformed ids cannot exist
func parseID(id, notFound string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.NotFound, notFound)
	}
	return oid, nil
}

// storeErr converts a store failure: ErrNotFound becomes the given kind and
// message, anything else is Internal.
func storeErr(err error, kind apperr.Kind, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(kind, message)
	}
	return apperr.Wrap(err, "Internal server error")
}
