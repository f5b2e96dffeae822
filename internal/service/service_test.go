package service_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/blog-service/internal/apperr"
	"github.com/Dan9191/blog-service/internal/auth"
	"github.com/Dan9191/blog-service/internal/config"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/repository/memory"
	"github.com/Dan9191/blog-service/internal/service"
	"github.com/Dan9191/blog-service/internal/validation"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeImages struct {
	mu      sync.Mutex
	cleared []string
}

func (f *fakeImages) Clear(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, path)
	return nil
}

type fixture struct {
	svc    *service.Service
	store  *memory.Store
	images *fakeImages
	issuer *auth.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{BcryptCost: bcrypt.MinCost}
	issuer := auth.NewIssuer("test-secret", time.Hour)
	store := memory.New()
	images := &fakeImages{}
	return &fixture{
		svc:    service.NewService(store, issuer, images, log, cfg),
		store:  store,
		images: images,
		issuer: issuer,
	}
}

// signup creates a user and returns a context authenticated as them
func (f *fixture) signup(t *testing.T, email string) (context.Context, *models.User) {
	t.Helper()
	user, err := f.svc.CreateUser(context.Background(), service.UserInput{Email: email, Name: "Max", Password: "secret1"})
	require.NoError(t, err)
	ctx := auth.WithInfo(context.Background(), auth.Info{IsAuth: true, UserID: user.ID.Hex()})
	return ctx, user
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, kind, ae.Kind, "got %v: %s", ae.Kind, ae.Message)
	return ae
}

var validPost = service.PostInput{Title: "Hello", Content: "World!", ImageURL: "images/a.png"}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	user, err := f.svc.CreateUser(context.Background(), service.UserInput{Email: "max@test.com", Name: "Max", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStatus, user.Status)
	assert.NotEqual(t, "secret1", user.Password)
	assert.True(t, auth.VerifyPassword("secret1", user.Password))
}

func TestCreateUser_Invalid(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateUser(context.Background(), service.UserInput{Email: "nope", Password: "abc"})
	ae := requireKind(t, err, apperr.InvalidInput)
	require.Len(t, ae.Details, 2)
	assert.Equal(t, validation.MsgEmail, ae.Details[0].Message)
	assert.Equal(t, validation.MsgPassword, ae.Details[1].Message)

	_, err = f.svc.CreateUser(context.Background(), service.UserInput{Email: "max@test.com", Password: strings.Repeat("x", 17)})
	requireKind(t, err, apperr.InvalidInput)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "max@test.com")

	_, err := f.svc.CreateUser(context.Background(), service.UserInput{Email: "max@test.com", Password: "other12"})
	ae := requireKind(t, err, apperr.Conflict)
	assert.Equal(t, "User exists already", ae.Message)

	_, err = f.svc.Login(context.Background(), "max@test.com", "other12")
	requireKind(t, err, apperr.Unauthenticated)
}

type chanMailer chan string

func (c chanMailer) SendWelcome(to, _ string) error {
	c <- to
	return nil
}

func TestCreateUser_SendsWelcome(t *testing.T) {
	f := newFixture(t)
	mails := make(chanMailer, 1)
	f.svc.UseMailer(mails)
	f.signup(t, "max@test.com")

	select {
	case to := <-mails:
		assert.Equal(t, "max@test.com", to)
	case <-time.After(time.Second):
		t.Fatal("welcome mail not sent")
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	_, user := f.signup(t, "max@test.com")

	data, err := f.svc.Login(context.Background(), "max@test.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), data.UserID)

	claims, err := f.issuer.Authenticate(data.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "max@test.com", claims.Email)

	_, err = f.svc.Login(context.Background(), "max@test.com", "wrong-pass")
	ae := requireKind(t, err, apperr.Unauthenticated)
	assert.Equal(t, "Password is incorrect", ae.Message)

	_, err = f.svc.Login(context.Background(), "ghost@test.com", "secret1")
	ae = requireKind(t, err, apperr.Unauthenticated)
	assert.Equal(t, "user not found", ae.Message)
}

func TestLogin_DoesNotValidateLength(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "max@test.com")

	// a one character password is rejected as incorrect, not as invalid input
	_, err := f.svc.Login(context.Background(), "max@test.com", "x")
	requireKind(t, err, apperr.Unauthenticated)
}

func TestRequiresAuth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePost(ctx, validPost)
	requireKind(t, err, apperr.Unauthenticated)
	_, err = f.svc.Posts(ctx, 1)
	requireKind(t, err, apperr.Unauthenticated)
	_, err = f.svc.Post(ctx, "000000000000000000000000")
	requireKind(t, err, apperr.Unauthenticated)
	_, err = f.svc.UpdatePost(ctx, "000000000000000000000000", validPost)
	requireKind(t, err, apperr.Unauthenticated)
	_, err = f.svc.DeletePost(ctx, "000000000000000000000000")
	requireKind(t, err, apperr.Unauthenticated)
	_, err = f.svc.CurrentUser(ctx)
	requireKind(t, err, apperr.Unauthenticated)
	_, err = f.svc.UpdateStatus(ctx, "busy")
	requireKind(t, err, apperr.Unauthenticated)
	_, err = f.svc.CreateComment(ctx, "000000000000000000000000", "hello")
	requireKind(t, err, apperr.Unauthenticated)
}

func TestCreatePost_TitleLength(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.signup(t, "max@test.com")

	_, err := f.svc.CreatePost(ctx, service.PostInput{Title: "abcd", Content: "World!"})
	ae := requireKind(t, err, apperr.InvalidInput)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, validation.MsgTitle, ae.Details[0].Message)

	post, err := f.svc.CreatePost(ctx, service.PostInput{Title: "abcde", Content: "World!", ImageURL: "images/a.png"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, post.Creator)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)

	got, err := f.svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, post.ID, got.Posts[0])
}

func TestCreatePost_UnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := auth.WithInfo(context.Background(), auth.Info{IsAuth: true, UserID: "64b7f0c2a1b2c3d4e5f60718"})
	_, err := f.svc.CreatePost(ctx, validPost)
	ae := requireKind(t, err, apperr.Unauthenticated)
	assert.Equal(t, "Invalid user", ae.Message)
}

func TestPosts_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.signup(t, "max@test.com")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var titles []string
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		f.store.SetClock(func() time.Time { return at })
		title := "Post number " + string(rune('A'+i))
		_, err := f.svc.CreatePost(ctx, service.PostInput{Title: title, Content: "content"})
		require.NoError(t, err)
		titles = append(titles, title)
	}

	cases := []struct {
		page   int
		titles []string
	}{
		{0, []string{titles[4], titles[3]}},
		{1, []string{titles[4], titles[3]}},
		{2, []string{titles[2], titles[1]}},
		{3, []string{titles[0]}},
		{4, nil},
	}
	for _, c := range cases {
		page, err := f.svc.Posts(ctx, c.page)
		require.NoError(t, err)
		assert.Equal(t, int64(5), page.TotalPosts)
		var got []string
		for _, p := range page.Posts {
			got = append(got, p.Title)
		}
		assert.Equal(t, c.titles, got, "page %d", c.page)
	}
}

func TestPost_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.signup(t, "max@test.com")

	_, err := f.svc.Post(ctx, "64b7f0c2a1b2c3d4e5f60718")
	ae := requireKind(t, err, apperr.NotFound)
	assert.Equal(t, "no post found", ae.Message)

	_, err = f.svc.Post(ctx, "not-an-id")
	requireKind(t, err, apperr.NotFound)
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ownerCtx, _ := f.signup(t, "max@test.com")
	otherCtx, _ := f.signup(t, "eve@test.com")

	f.store.SetClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })
	post, err := f.svc.CreatePost(ownerCtx, validPost)
	require.NoError(t, err)
	id := post.ID.Hex()

	_, err = f.svc.UpdatePost(otherCtx, id, service.PostInput{Title: "Edited", Content: "Edited"})
	requireKind(t, err, apperr.Forbidden)

	// ownership is checked before validation
	_, err = f.svc.UpdatePost(otherCtx, id, service.PostInput{Title: "x", Content: "y"})
	requireKind(t, err, apperr.Forbidden)

	_, err = f.svc.UpdatePost(ownerCtx, id, service.PostInput{Title: "x", Content: "Edited"})
	requireKind(t, err, apperr.InvalidInput)

	_, err = f.svc.UpdatePost(ownerCtx, "64b7f0c2a1b2c3d4e5f60718", validPost)
	requireKind(t, err, apperr.NotFound)

	f.store.SetClock(func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) })
	updated, err := f.svc.UpdatePost(ownerCtx, id, service.PostInput{Title: "Edited", Content: "Edited", ImageURL: "undefined"})
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
	assert.Equal(t, "images/a.png", updated.ImageURL)
	assert.True(t, updated.UpdatedAt.After(post.UpdatedAt))
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)

	updated, err = f.svc.UpdatePost(ownerCtx, id, service.PostInput{Title: "Edited", Content: "Edited", ImageURL: "images/b.png"})
	require.NoError(t, err)
	assert.Equal(t, "images/b.png", updated.ImageURL)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ownerCtx, _ := f.signup(t, "max@test.com")
	otherCtx, _ := f.signup(t, "eve@test.com")

	post, err := f.svc.CreatePost(ownerCtx, validPost)
	require.NoError(t, err)
	id := post.ID.Hex()
	_, err = f.svc.CreateComment(otherCtx, id, "Nice post")
	require.NoError(t, err)

	_, err = f.svc.DeletePost(otherCtx, id)
	requireKind(t, err, apperr.Forbidden)
	assert.Empty(t, f.images.cleared)

	ok, err := f.svc.DeletePost(ownerCtx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"images/a.png"}, f.images.cleared)

	_, err = f.svc.Post(ownerCtx, id)
	requireKind(t, err, apperr.NotFound)

	owner, err := f.svc.CurrentUser(ownerCtx)
	require.NoError(t, err)
	assert.Empty(t, owner.Posts)

	comments, err := f.store.ListCommentsByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = f.svc.DeletePost(ownerCtx, id)
	requireKind(t, err, apperr.NotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.signup(t, "max@test.com")

	user, err := f.svc.UpdateStatus(ctx, "Writing a book")
	require.NoError(t, err)
	assert.Equal(t, "Writing a book", user.Status)

	again, err := f.svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Writing a book", again.Status)
}

func TestCurrentUser_Deleted(t *testing.T) {
	f := newFixture(t)
	ctx := auth.WithInfo(context.Background(), auth.Info{IsAuth: true, UserID: "64b7f0c2a1b2c3d4e5f60718"})
	_, err := f.svc.CurrentUser(ctx)
	requireKind(t, err, apperr.NotFound)
	_, err = f.svc.UpdateStatus(ctx, "x")
	requireKind(t, err, apperr.NotFound)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ownerCtx, owner := f.signup(t, "max@test.com")
	otherCtx, _ := f.signup(t, "eve@test.com")

	post, err := f.svc.CreatePost(ownerCtx, validPost)
	require.NoError(t, err)
	postID := post.ID.Hex()

	_, err = f.svc.CreateComment(ownerCtx, postID, "hey")
	requireKind(t, err, apperr.InvalidInput)
	_, err = f.svc.CreateComment(ownerCtx, "64b7f0c2a1b2c3d4e5f60718", "hello there")
	requireKind(t, err, apperr.NotFound)

	c, err := f.svc.CreateComment(ownerCtx, postID, "First comment")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, c.Creator)
	assert.Equal(t, post.ID, c.Post)

	_, err = f.svc.UpdateComment(otherCtx, c.ID.Hex(), "Hijacked")
	requireKind(t, err, apperr.Forbidden)
	_, err = f.svc.DeleteComment(otherCtx, c.ID.Hex())
	requireKind(t, err, apperr.Forbidden)

	updated, err := f.svc.UpdateComment(ownerCtx, c.ID.Hex(), "Edited comment")
	require.NoError(t, err)
	assert.Equal(t, "Edited comment", updated.Content)

	list, err := f.svc.Comments(otherCtx, postID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Edited comment", list[0].Content)

	ok, err := f.svc.DeleteComment(ownerCtx, c.ID.Hex())
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = f.svc.UpdateComment(ownerCtx, c.ID.Hex(), "Edited again")
	requireKind(t, err, apperr.NotFound)
}

func TestOwnsImage(t *testing.T) {
	f := newFixture(t)
	ownerCtx, _ := f.signup(t, "max@test.com")
	otherCtx, _ := f.signup(t, "eve@test.com")
	_, err := f.svc.CreatePost(ownerCtx, validPost)
	require.NoError(t, err)

	owned, err := f.svc.OwnsImage(ownerCtx, "images/a.png")
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = f.svc.OwnsImage(otherCtx, "images/a.png")
	require.NoError(t, err)
	assert.False(t, owned)

	owned, err = f.svc.OwnsImage(ownerCtx, "images/unknown.png")
	require.NoError(t, err)
	assert.False(t, owned)

	_, err = f.svc.OwnsImage(context.Background(), "images/a.png")
	requireKind(t, err, apperr.Unauthenticated)
}
