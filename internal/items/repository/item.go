package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	itemserrors "shareit/internal/items/errors"
	"shareit/pkg/config"
	mongotx "shareit/pkg/db/mongo"
	"shareit/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Items"
)

type mongoItemRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id string) (*model.Item, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Item, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Item, error)
	FindByRequestIDs(ctx context.Context, requestIDs []string) ([]*model.Item, error)
	Search(ctx context.Context, text string, limit int, offset int64) ([]*model.Item, error)
	Update(ctx context.Context, id string, update *model.ItemUpdate) (*model.Item, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoItemRepository(cfg *config.Config) ItemRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoItemRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoItemRepository) Create(ctx context.Context, item *model.Item) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *mongoItemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", itemserrors.ErrInvalidID, id)
	}

	var item model.Item
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", itemserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

// FindByIDs skips ids that are malformed or unknown.
func (r *mongoItemRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Item, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := toObjectIDs(ids)
	if len(objectIDs) == 0 {
		return []*model.Item{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, options.Find())
}

func (r *mongoItemRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Item, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"owner_id": ownerID}, pageByID(limit, offset))
}

func (r *mongoItemRepository) FindByRequestIDs(ctx context.Context, requestIDs []string) ([]*model.Item, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if len(requestIDs) == 0 {
		return []*model.Item{}, nil
	}
	return r.find(ctx, bson.M{"request_id": bson.M{"$in": requestIDs}}, pageByID(0, 0))
}

// Search matches available items whose name or description contains text,
// ignoring case. text is matched literally.
func (r *mongoItemRepository) Search(ctx context.Context, text string, limit int, offset int64) ([]*model.Item, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
	filter := bson.M{
		"available": true,
		"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		},
	}
	return r.find(ctx, filter, pageByID(limit, offset))
}

// Update applies the non-nil fields of update and returns the stored item.
func (r *mongoItemRepository) Update(ctx context.Context, id string, update *model.ItemUpdate) (*model.Item, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", itemserrors.ErrInvalidID, id)
	}

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Available != nil {
		set["available"] = *update.Available
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item model.Item
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", itemserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return &item, nil
}

func (r *mongoItemRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete items of owner: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoItemRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoItemRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Item, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.Item{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

// pageByID orders by insertion and pages with skip/limit. A limit of zero
// means no limit.
func pageByID(limit int, offset int64) *options.FindOptions {
	opts := options.Find().
		SetSkip(offset).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func toObjectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
