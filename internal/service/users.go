package service

import (
	"context"
	"errors"

	"github.com/Dan9191/blog-service/internal/apperr"
	"github.com/Dan9191/blog-service/internal/auth"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/repository"
	"github.com/Dan9191/blog-service/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserInput carries the signup fields
type UserInput struct {
	Email    string
	Name     string
	Password string
}

// AuthData is the result of a successful login
type AuthData struct {
	Token  string
	UserID string
}

// CreateUser registers a new user with a hashed password
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if err := validation.Signup(in.Email, in.Password); err != nil {
		return nil, err
	}

	_, err := s.store.FindUserByEmail(ctx, in.Email)
	if err == nil {
		return nil, apperr.New(apperr.Conflict, "User exists already")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(err, "Internal server error")
	}

	hashed, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(err, "Internal server error")
	}

	user := &models.User{
		Email:    in.Email,
		Name:     in.Name,
		Password: hashed,
		Status:   models.DefaultStatus,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperr.New(apperr.Conflict, "User exists already")
		}
		return nil, apperr.Wrap(err, "Internal server error")
	}

	s.log.Infof("User registered: %s", user.Email)
	if s.mailer != nil {
		go func(to, name string) {
			if err := s.mailer.SendWelcome(to, name); err != nil {
				s.log.WithError(err).Warnf("Welcome mail to %s failed", to)
			}
		}(user.Email, user.Name)
	}
	return user, nil
}

// Login verifies credentials and returns a signed token. Password length is
// not re-validated here, only at signup.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthData, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err, apperr.Unauthenticated, "user not found")
	}
	if !auth.VerifyPassword(password, user.Password) {
		return nil, apperr.New(apperr.Unauthenticated, "Password is incorrect")
	}

	userID := user.ID.Hex()
	token, err := s.tokens.Issue(userID, user.Email)
	if err != nil {
		return nil, apperr.Wrap(err, "Internal server error")
	}

	s.log.Infof("User logged in: %s", user.Email)
	return &AuthData{Token: token, UserID: userID}, nil
}

// CurrentUser returns the authenticated caller
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	callerID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByID(ctx, callerID)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound, "user not found")
	}
	return user, nil
}

// UpdateStatus sets the caller's status text
func (s *Service) UpdateStatus(ctx context.Context, status string) (*models.User, error) {
	callerID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindUserByID(ctx, callerID); err != nil {
		return nil, storeErr(err, apperr.NotFound, "user not found")
	}
	user, err := s.store.UpdateUserStatus(ctx, callerID, status)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound, "user not found")
	}

	s.log.Infof("Status updated for user %s", callerID.Hex())
	return user, nil
}

// UserByID loads a related user for nested fields
func (s *Service) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, apperr.NotFound, "user not found")
	}
	return user, nil
}

// PostsOf loads the posts referenced by a user, in list order
func (s *Service) PostsOf(ctx context.Context, user *models.User) ([]*models.Post, error) {
	posts, err := s.store.FindPostsByIDs(ctx, user.Posts)
	if err != nil {
		return nil, apperr.Wrap(err, "Internal server error")
	}
	return posts, nil
}
