package graph

import (
	"context"
	"time"

	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/service"
	"github.com/graph-gophers/graphql-go"
)

// isoLayout renders UTC timestamps with millisecond precision
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

func isoTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

type authDataResolver struct {
	data *service.AuthData
}

func (a *authDataResolver) Token() string { return a.data.Token }
func (a *authDataResolver) UserID() string { return a.data.UserID }

type postsDataResolver struct {
	svc  *service.Service
	page *models.PostPage
}

func (p *postsDataResolver) Posts() []*postResolver {
	out := make([]*postResolver, 0, len(p.page.Posts))
	for _, post := range p.page.Posts {
		out = append(out, &postResolver{svc: p.svc, post: post})
	}
	return out
}

func (p *postsDataResolver) TotalPosts() int32 { return int32(p.page.TotalPosts) }

type userResolver struct {
	svc  *service.Service
	user *models.User
}

func (u *userResolver) ID() graphql.ID { return graphql.ID(u.user.ID.Hex()) }
func (u *userResolver) Name() string { return u.user.Name }
func (u *userResolver) Email() string { return u.user.Email }
func (u *userResolver) Status() string { return u.user.Status }

func (u *userResolver) Posts(ctx context.Context) ([]*postResolver, error) {
	posts, err := u.svc.PostsOf(ctx, u.user)
	if err != nil {
		return nil, err
	}
	out := make([]*postResolver, 0, len(posts))
	for _, post := range posts {
		out = append(out, &postResolver{svc: u.svc, post: post})
	}
	return out, nil
}

type postResolver struct {
	svc  *service.Service
	post *models.Post
}

func (p *postResolver) ID() graphql.ID { return graphql.ID(p.post.ID.Hex()) }
func (p *postResolver) Title() string { return p.post.Title }
func (p *postResolver) Content() string { return p.post.Content }
func (p *postResolver) ImageURL() string { return p.post.ImageURL }
func (p *postResolver) CreatedAt() string { return isoTime(p.post.CreatedAt) }
func (p *postResolver) UpdatedAt() string { return isoTime(p.post.UpdatedAt) }

func (p *postResolver) Creator(ctx context.Context) (*userResolver, error) {
	user, err := p.svc.UserByID(ctx, p.post.Creator)
	if err != nil {
		return nil, err
	}
	return &userResolver{svc: p.svc, user: user}, nil
}

func (p *postResolver) Comments(ctx context.Context) ([]*commentResolver, error) {
	comments, err := p.svc.CommentsOf(ctx, p.post)
	if err != nil {
		return nil, err
	}
	return wrapComments(p.svc, comments), nil
}

type commentResolver struct {
	svc     *service.Service
	comment *models.Comment
}

func wrapComments(svc *service.Service, comments []*models.Comment) []*commentResolver {
	out := make([]*commentResolver, 0, len(comments))
	for _, c := range comments {
		out = append(out, &commentResolver{svc: svc, comment: c})
	}
	return out
}

func (c *commentResolver) ID() graphql.ID { return graphql.ID(c.comment.ID.Hex()) }
func (c *commentResolver) Content() string { return c.comment.Content }
func (c *commentResolver) CreatedAt() string { return isoTime(c.comment.CreatedAt) }
func (c *commentResolver) UpdatedAt() string { return isoTime(c.comment.UpdatedAt) }

func (c *commentResolver) Creator(ctx context.Context) (*userResolver, error) {
	user, err := c.svc.UserByID(ctx, c.comment.Creator)
	if err != nil {
		return nil, err
	}
	return &userResolver{svc: c.svc, user: user}, nil
}

func (c *commentResolver) Post(ctx context.Context) (*postResolver, error) {
	post, err := c.svc.PostByID(ctx, c.comment.Post.Hex())
	if err != nil {
		return nil, err
	}
	return &postResolver{svc: c.svc, post: post}, nil
}
