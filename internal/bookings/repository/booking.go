package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "shareit/internal/bookings/errors"
	"shareit/internal/bookings/state"
	"shareit/pkg/config"
	mongotx "shareit/pkg/db/mongo"
	"shareit/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

// ParticipantQuery selects the bookings a user sees from one side of the
// deal: as booker, or as owner of the booked item.
type ParticipantQuery struct {
	UserID  string
	AsOwner bool
	State   state.State
	Now     time.Time
}

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	SetApprovalIfPending(ctx context.Context, id string, approved bool) (*model.Booking, error)
	FindActiveByItem(ctx context.Context, itemID string, now time.Time) ([]*model.Booking, error)
	FindLastPastByItem(ctx context.Context, itemID string, now time.Time) (*model.Booking, error)
	FindByParticipant(ctx context.Context, query ParticipantQuery, limit int, offset int64) ([]*model.Booking, error)
	ExistsStartedApproved(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// SetApprovalIfPending records the decision only while approved is still
// null. A booking that exists but was already decided yields
// ErrAlreadyDecided, so two concurrent decisions cannot both succeed.
func (r *mongoBookingRepository) SetApprovalIfPending(ctx context.Context, id string, approved bool) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "approved": nil}
	update := bson.M{"$set": bson.M{"approved": approved}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to set booking approval: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return nil, fmt.Errorf("failed to check booking existence: %w", err)
	}
	if count == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return nil, bookingserrors.ErrAlreadyDecided
}

// FindActiveByItem returns the item's bookings that still block new ones:
// approved or pending, not yet ended, earliest start first.
func (r *mongoBookingRepository) FindActiveByItem(ctx context.Context, itemID string, now time.Time) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"item_id":  itemID,
		"approved": bson.M{"$ne": false},
		"end_time": bson.M{"$gt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepository) FindLastPastByItem(ctx context.Context, itemID string, now time.Time) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"item_id":  itemID,
		"end_time": bson.M{"$lt": now},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "start_time", Value: -1}})

	var booking model.Booking
	err := r.collection.FindOne(ctx, filter, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find last booking: %w", err)
	}
	return &booking, nil
}

// FindByParticipant lists a user's bookings newest start first. A limit of
// zero means no limit.
func (r *mongoBookingRepository) FindByParticipant(ctx context.Context, query ParticipantQuery, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(offset)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	return r.find(ctx, buildParticipantFilter(query), opts)
}

func (r *mongoBookingRepository) ExistsStartedApproved(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, startedApprovedFilter(bookerID, itemID, now), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count started bookings: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// A booking has started once start_time <= now.
func startedApprovedFilter(bookerID, itemID string, now time.Time) bson.M {
	return bson.M{
		"item_id":    itemID,
		"booker_id":  bookerID,
		"approved":   true,
		"start_time": bson.M{"$lte": now},
	}
}

func buildParticipantFilter(query ParticipantQuery) bson.M {
	filter := bson.M{}
	if query.AsOwner {
		filter["owner_id"] = query.UserID
	} else {
		filter["booker_id"] = query.UserID
	}

	for key, value := range stateFilter(query.State, query.Now) {
		filter[key] = value
	}
	return filter
}

// stateFilter is the Mongo rendition of state.Matches. CURRENT keeps both
// bounds inclusive like the classifier does.
func stateFilter(st state.State, now time.Time) bson.M {
	switch st {
	case state.Waiting:
		return bson.M{"approved": nil}
	case state.Rejected:
		return bson.M{"approved": false}
	case state.Past:
		return bson.M{"approved": true, "end_time": bson.M{"$lt": now}}
	case state.Current:
		return bson.M{"start_time": bson.M{"$lte": now}, "end_time": bson.M{"$gte": now}}
	case state.Future:
		return bson.M{"start_time": bson.M{"$gt": now}}
	default:
		return bson.M{}
	}
}
