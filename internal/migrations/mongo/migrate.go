package mongo

import (
	"context"
	"fmt"

	bookingrepo "shareit/internal/bookings/repository"
	itemrepo "shareit/internal/items/repository"
	"shareit/internal/migrations/mongo/validators"
	requestrepo "shareit/internal/requests/repository"
	userrepo "shareit/internal/users/repository"
	"shareit/pkg/lock"
	"shareit/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UsersIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	ItemsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
		{Keys: bson.D{{Key: "available", Value: 1}}},
	}

	CommentsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	RequestsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "item_id", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
		{Keys: bson.D{{Key: "booker_id", Value: 1}, {Key: "start_time", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "start_time", Value: -1}}},
	}

	// Expired locks are also cleared by the locker itself; the TTL monitor
	// only runs once a minute.
	BookingLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() map[string]collectionDef {
	return map[string]collectionDef{
		userrepo.CollectionName:         {Indexes: UsersIndexes, Validator: validators.UserValidator},
		itemrepo.CollectionName:         {Indexes: ItemsIndexes, Validator: validators.ItemValidator},
		itemrepo.CommentsCollectionName: {Indexes: CommentsIndexes, Validator: validators.CommentValidator},
		requestrepo.CollectionName:      {Indexes: RequestsIndexes, Validator: validators.RequestValidator},
		bookingrepo.CollectionName:      {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		lock.CollectionName:             {Indexes: BookingLocksIndexes, Validator: validators.BookingLockValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
		log.Info("Collection migrated", "collection", name, "indexes", len(def.Indexes))
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	return err
}
