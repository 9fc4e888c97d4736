package repository

import (
	"context"
	"fmt"
	"time"

	"shareit/pkg/config"
	mongotx "shareit/pkg/db/mongo"
	"shareit/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CommentsCollectionName = "Comments"
)

type mongoCommentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByItems(ctx context.Context, itemIDs []string) ([]*model.Comment, error)
}

func NewMongoCommentRepository(cfg *config.Config) CommentRepository {
	return &mongoCommentRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CommentsCollectionName),
	}
}

func (r *mongoCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	comment.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		comment.ID = oid.Hex()
	}
	return nil
}

// FindByItems returns the comments of all given items, oldest first.
func (r *mongoCommentRepository) FindByItems(ctx context.Context, itemIDs []string) ([]*model.Comment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if len(itemIDs) == 0 {
		return []*model.Comment{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"item_id": bson.M{"$in": itemIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []*model.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}
