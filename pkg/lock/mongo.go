package lock

import (
	"context"
	"fmt"
	"time"

	"shareit/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Booking_locks"

type mongoLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

// NewMongoLocker stores locks as documents whose _id is the key. The
// expires_at TTL index created by the migration job reaps abandoned locks;
// Acquire also steals a lock whose expiry has passed, since the TTL monitor
// only runs once a minute.
func NewMongoLocker(db *mongo.Database, ttl time.Duration) Locker {
	return &mongoLocker{
		collection: db.Collection(CollectionName),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (l *mongoLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	token := newToken()

	err := l.insert(ctx, key, token)
	if mongo.IsDuplicateKeyError(err) {
		stolen, stealErr := l.removeExpired(ctx, key)
		if stealErr != nil {
			return nil, stealErr
		}
		if !stolen {
			return nil, ErrHeld
		}
		err = l.insert(ctx, key, token)
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrHeld
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		_, err := l.collection.DeleteOne(ctx, bson.M{"_id": key, "token": token})
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}, nil
}

func (l *mongoLocker) insert(ctx context.Context, key, token string) error {
	now := l.now()
	_, err := l.collection.InsertOne(ctx, &model.BookingLock{
		ID:        key,
		Token:     token,
		ExpiresAt: expiry(now, l.ttl),
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	})
	return err
}

func (l *mongoLocker) removeExpired(ctx context.Context, key string) (bool, error) {
	result, err := l.collection.DeleteOne(ctx, bson.M{
		"_id":        key,
		"expires_at": bson.M{"$lt": l.now().UTC()},
	})
	if err != nil {
		return false, fmt.Errorf("failed to clear expired lock %s: %w", key, err)
	}
	return result.DeletedCount == 1, nil
}
