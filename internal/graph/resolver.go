// Package graph binds the blog schema to the service layer.
package graph

import (
	"context"

	"github.com/Dan9191/blog-service/internal/service"
	"github.com/graph-gophers/graphql-go"
)

// Resolver is the root resolver for queries and mutations
type Resolver struct {
	svc *service.Service
}

// NewResolver creates a root resolver over svc
func NewResolver(svc *service.Service) *Resolver {
	return &Resolver{svc: svc}
}

type userInputData struct {
	Email    string
	Name     *string
	Password string
}

type postInputData struct {
	Title    string
	Content  string
	ImageURL *string
}

func (in postInputData) toService(missing string) service.PostInput {
	image := missing
	if in.ImageURL != nil {
		image = *in.ImageURL
	}
	return service.PostInput{Title: in.Title, Content: in.Content, ImageURL: image}
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authDataResolver, error) {
	data, err := r.svc.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return &authDataResolver{data: data}, nil
}

func (r *Resolver) Posts(ctx context.Context, args struct{ Page *int32 }) (*postsDataResolver, error) {
	page := 1
	if args.Page != nil {
		page = int(*args.Page)
	}
	result, err := r.svc.Posts(ctx, page)
	if err != nil {
		return nil, err
	}
	return &postsDataResolver{svc: r.svc, page: result}, nil
}

func (r *Resolver) Post(ctx context.Context, args struct{ ID graphql.ID }) (*postResolver, error) {
	post, err := r.svc.Post(ctx, string(args.ID))
	if err != nil {
		return nil, err
	}
	return &postResolver{svc: r.svc, post: post}, nil
}

func (r *Resolver) User(ctx context.Context) (*userResolver, error) {
	user, err := r.svc.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return &userResolver{svc: r.svc, user: user}, nil
}

func (r *Resolver) Comments(ctx context.Context, args struct{ PostID graphql.ID }) ([]*commentResolver, error) {
	comments, err := r.svc.Comments(ctx, string(args.PostID))
	if err != nil {
		return nil, err
	}
	return wrapComments(r.svc, comments), nil
}

func (r *Resolver) CreateUser(ctx context.Context, args struct{ UserInput userInputData }) (*userResolver, error) {
	in := service.UserInput{Email: args.UserInput.Email, Password: args.UserInput.Password}
	if args.UserInput.Name != nil {
		in.Name = *args.UserInput.Name
	}
	user, err := r.svc.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return &userResolver{svc: r.svc, user: user}, nil
}

func (r *Resolver) CreatePost(ctx context.Context, args struct{ PostInput postInputData }) (*postResolver, error) {
	post, err := r.svc.CreatePost(ctx, args.PostInput.toService(""))
	if err != nil {
		return nil, err
	}
	return &postResolver{svc: r.svc, post: post}, nil
}

func (r *Resolver) UpdatePost(ctx context.Context, args struct {
	ID        graphql.ID
	PostInput postInputData
}) (*postResolver, error) {
	post, err := r.svc.UpdatePost(ctx, string(args.ID), args.PostInput.toService(service.KeepImage))
	if err != nil {
		return nil, err
	}
	return &postResolver{svc: r.svc, post: post}, nil
}

func (r *Resolver) DeletePost(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	return r.svc.DeletePost(ctx, string(args.ID))
}

func (r *Resolver) UpdateStatus(ctx context.Context, args struct{ Status string }) (*userResolver, error) {
	user, err := r.svc.UpdateStatus(ctx, args.Status)
	if err != nil {
		return nil, err
	}
	return &userResolver{svc: r.svc, user: user}, nil
}

func (r *Resolver) CreateComment(ctx context.Context, args struct {
	PostID  graphql.ID
	Content string
}) (*commentResolver, error) {
	comment, err := r.svc.CreateComment(ctx, string(args.PostID), args.Content)
	if err != nil {
		return nil, err
	}
	return &commentResolver{svc: r.svc, comment: comment}, nil
}

func (r *Resolver) UpdateComment(ctx context.Context, args struct {
	ID      graphql.ID
	Content string
}) (*commentResolver, error) {
	comment, err := r.svc.UpdateComment(ctx, string(args.ID), args.Content)
	if err != nil {
		return nil, err
	}
	return &commentResolver{svc: r.svc, comment: comment}, nil
}

func (r *Resolver) DeleteComment(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	return r.svc.DeleteComment(ctx, string(args.ID))
}
