package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/blog-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned on unique index violations
	ErrDuplicateKey = errors.New("duplicate key")
)

// Collection names
const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
)

// Connect opens a client to uri and verifies the primary is reachable
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// Repository provides document store operations
type Repository struct {
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	now      func() time.Time
}

// NewRepository initializes a new repository
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:    db.Collection(usersCollection),
		posts:    db.Collection(postsCollection),
		comments: db.Collection(commentsCollection),
		now:      time.Now,
	}
}

// EnsureIndexes creates the unique email index and the listing indexes
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	_, err = r.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}
	_, err = r.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comments index: %w", err)
	}
	return nil
}

// timestamp matches the millisecond precision of BSON dates
func (r *Repository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	default:
		return err
	}
}

// CreateUser inserts a new user and assigns its ID
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	if user.Posts == nil {
		user.Posts = []primitive.ObjectID{}
	}
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", mapErr(err))
	}
	return nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findUser(ctx, bson.M{"_id": id})
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, bson.M{"email": email})
}

func (r *Repository) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	user := &models.User{}
	err := r.users.FindOne(ctx, filter).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateUserStatus sets the status and returns the updated user
func (r *Repository) UpdateUserStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.User, error) {
	user := &models.User{}
	err := r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	return user, nil
}

// AddUserPost appends postID to the user's post list
func (r *Repository) AddUserPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	res, err := r.users.UpdateByID(ctx, userID, bson.M{"$push": bson.M{"posts": postID}})
	if err != nil {
		return fmt.Errorf("failed to add post to user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveUserPost pulls postID from the user's post list
func (r *Repository) RemoveUserPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	res, err := r.users.UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"posts": postID}})
	if err != nil {
		return fmt.Errorf("failed to remove post from user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePost inserts a post and assigns its ID and timestamps
func (r *Repository) CreatePost(ctx context.Context, post *models.Post) error {
	now := r.timestamp()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to create post: %w", mapErr(err))
	}
	return nil
}

// FindPostByID retrieves a post by id
func (r *Repository) FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post := &models.Post{}
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return post, nil
}

// FindPostsByIDs retrieves posts in the order of ids, skipping missing ones
func (r *Repository) FindPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	cur, err := r.posts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}
	var found []*models.Post
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	posts := make([]*models.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// ListPosts returns posts newest first
func (r *Repository) ListPosts(ctx context.Context, skip, limit int64) ([]*models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := r.posts.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// CountPosts returns the total number of posts
func (r *Repository) CountPosts(ctx context.Context) (int64, error) {
	n, err := r.posts.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

// UpdatePost writes the editable fields and refreshes UpdatedAt
func (r *Repository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = r.timestamp()
	res, err := r.posts.UpdateByID(ctx, post.ID, bson.M{"$set": bson.M{
		"title":     post.Title,
		"content":   post.Content,
		"imageUrl":  post.ImageURL,
		"updatedAt": post.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post by id
func (r *Repository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListImageURLs returns every distinct image reference held by a post
func (r *Repository) ListImageURLs(ctx context.Context) ([]string, error) {
	values, err := r.posts.Distinct(ctx, "imageUrl", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list image urls: %w", err)
	}
	urls := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			urls = append(urls, s)
		}
	}
	return urls, nil
}

// CreateComment inserts a comment and assigns its ID and timestamps
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := r.timestamp()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if _, err := r.comments.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", mapErr(err))
	}
	return nil
}

// FindCommentByID retrieves a comment by id
func (r *Repository) FindCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	comment := &models.Comment{}
	err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

// ListCommentsByPost returns the comments of a post oldest first
func (r *Repository) ListCommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.comments.Find(ctx, bson.M{"post": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := []*models.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

// UpdateComment writes the content and refreshes UpdatedAt
func (r *Repository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = r.timestamp()
	res, err := r.comments.UpdateByID(ctx, comment.ID, bson.M{"$set": bson.M{
		"content":   comment.Content,
		"updatedAt": comment.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteComment removes a comment by id
func (r *Repository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCommentsByPost removes every comment of a post
func (r *Repository) DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.comments.DeleteMany(ctx, bson.M{"post": postID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return res.DeletedCount, nil
}
