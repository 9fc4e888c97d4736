package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	requestserrors "shareit/internal/requests/errors"
	"shareit/pkg/config"
	mongotx "shareit/pkg/db/mongo"
	"shareit/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Requests"
)

type mongoRequestRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type RequestRepository interface {
	Create(ctx context.Context, request *model.ItemRequest) error
	FindByID(ctx context.Context, id string) (*model.ItemRequest, error)
	FindByRequester(ctx context.Context, requesterID string) ([]*model.ItemRequest, error)
	FindOthers(ctx context.Context, requesterID string, limit int, offset int64) ([]*model.ItemRequest, error)
	Exists(ctx context.Context, id string) (bool, error)
}

func NewMongoRequestRepository(cfg *config.Config) RequestRepository {
	return &mongoRequestRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoRequestRepository) Create(ctx context.Context, request *model.ItemRequest) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	request.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		request.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRequestRepository) FindByID(ctx context.Context, id string) (*model.ItemRequest, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", requestserrors.ErrInvalidID, id)
	}

	var request model.ItemRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", requestserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find item request: %w", err)
	}
	return &request, nil
}

func (r *mongoRequestRepository) FindByRequester(ctx context.Context, requesterID string) ([]*model.ItemRequest, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"requester_id": requesterID}, newestFirst(0, 0))
}

// FindOthers lists requests made by anyone but requesterID.
func (r *mongoRequestRepository) FindOthers(ctx context.Context, requesterID string, limit int, offset int64) ([]*model.ItemRequest, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"requester_id": bson.M{"$ne": requesterID}}, newestFirst(limit, offset))
}

func (r *mongoRequestRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check item request existence: %w", err)
	}
	return count > 0, nil
}

func (r *mongoRequestRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.ItemRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query item requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []*model.ItemRequest{}
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode item requests: %w", err)
	}
	return requests, nil
}

func newestFirst(limit int, offset int64) *options.FindOptions {
	opts := options.Find().
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
