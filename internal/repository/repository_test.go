package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Dan9191/blog-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mapErr(dup), ErrDuplicateKey)

	other := errors.New("boom")
	assert.Equal(t, other, mapErr(other))
}

// newTestRepo connects to MONGO_TEST_URI and uses a throwaway database.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri)
	require.NoError(t, err)
	db := client.Database("blog_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	r := NewRepository(db)
	require.NoError(t, r.EnsureIndexes(ctx))
	return r
}

func TestRepository_Users(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := &models.User{Name: "Max", Email: "max@test.com", Password: "hash", Status: models.DefaultStatus}
	require.NoError(t, r.CreateUser(ctx, u))
	assert.False(t, u.ID.IsZero())

	err := r.CreateUser(ctx, &models.User{Email: "max@test.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	got, err := r.FindUserByEmail(ctx, "max@test.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	updated, err := r.UpdateUserStatus(ctx, u.ID, "busy")
	require.NoError(t, err)
	assert.Equal(t, "busy", updated.Status)

	_, err = r.FindUserByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_PostsPagination(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []primitive.ObjectID
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		r.now = func() time.Time { return at }
		p := &models.Post{Title: "title", Content: "content"}
		require.NoError(t, r.CreatePost(ctx, p))
		ids = append(ids, p.ID)
	}

	n, err := r.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	page, err := r.ListPosts(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	page, err = r.ListPosts(ctx, 4, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	require.NoError(t, r.DeletePost(ctx, ids[0]))
	assert.ErrorIs(t, r.DeletePost(ctx, ids[0]), ErrNotFound)
}
