package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "shareit/internal/bookings/errors"
	"shareit/internal/bookings/repository"
	"shareit/internal/bookings/state"
	"shareit/internal/bookings/validator"
	itemserrors "shareit/internal/items/errors"
	"shareit/pkg/config"
	apperrors "shareit/pkg/errors"
	"shareit/pkg/events"
	"shareit/pkg/lock"
	"shareit/pkg/metrics"
	"shareit/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, bookerID string, req *model.BookingRequest) (*model.BookingResponse, error)
	GetByID(ctx context.Context, id string, requesterID string) (*model.BookingResponse, error)
	SetApproval(ctx context.Context, id string, approved bool, requesterID string) (*model.BookingResponse, error)
	ListByBooker(ctx context.Context, bookerID string, rawState string, limit int, offset int64) ([]*model.BookingResponse, error)
	ListByOwner(ctx context.Context, ownerID string, rawState string, limit int, offset int64) ([]*model.BookingResponse, error)
	LastAndNextForItem(ctx context.Context, item *model.Item, requesterID string) (last *model.BookingShort, next *model.BookingShort, err error)
	HasNoPriorBooking(ctx context.Context, bookerID string, itemID string) (bool, error)
}

// ItemLookup resolves the items bookings refer to.
type ItemLookup interface {
	FindByID(ctx context.Context, id string) (*model.Item, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Item, error)
}

type UserLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	locker    lock.Locker
	items     ItemLookup
	users     UserLookup
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	locker lock.Locker,
	items ItemLookup,
	users UserLookup,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		locker:    lock.WithRetry(locker, lock.DefaultRetryPolicy(cfg.LockTTL)),
		items:     items,
		users:     users,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create books an item for bookerID. Checks run in a fixed order: the
// request itself, item existence, booker existence, self-booking,
// availability, and finally the overlap check, which runs together with the
// insert under a per-item lock inside a transaction.
func (s *bookingService) Create(ctx context.Context, bookerID string, req *model.BookingRequest) (*model.BookingResponse, error) {
	// Mongo keeps milliseconds; validate the window that will be stored.
	req.StartTime = req.StartTime.UTC().Truncate(time.Millisecond)
	req.EndTime = req.EndTime.UTC().Truncate(time.Millisecond)

	if err := s.validator.Validate(req, s.now()); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "booker_id", bookerID, "error", err)
		metrics.IncBooking(metrics.OutcomeRejectedValidation)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	item, err := s.findItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUserExists(ctx, bookerID); err != nil {
		return nil, err
	}

	if item.OwnerID == bookerID {
		s.cfg.Log.Warn("Owner attempted to book own item", "item_id", item.ID, "user_id", bookerID)
		return nil, apperrors.NotFoundWithID("Item", item.ID)
	}

	if !item.IsAvailable() {
		s.cfg.Log.Warn("Booking rejected for unavailable item", "item_id", item.ID, "booker_id", bookerID)
		metrics.IncBooking(metrics.OutcomeRejectedValidation)
		return nil, apperrors.Validation(fmt.Sprintf("Item %s is not available for booking", item.ID), nil)
	}

	release, err := s.acquireItemLock(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := release(context.WithoutCancel(ctx)); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "item_id", item.ID, "error", releaseErr)
		}
	}()

	booking := &model.Booking{
		ItemID:    item.ID,
		OwnerID:   item.OwnerID,
		BookerID:  bookerID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking.ID = ""
		free, err := s.isFree(sessCtx, item.ID, booking.StartTime, booking.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if !free {
			return apperrors.Conflict(fmt.Sprintf(
				"Booking time %s - %s overlaps with an existing booking",
				booking.StartTime.Format(time.RFC3339),
				booking.EndTime.Format(time.RFC3339),
			))
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			s.cfg.Log.Warn("Booking overlaps existing booking", "item_id", item.ID, "booker_id", bookerID)
			metrics.IncBooking(metrics.OutcomeConflict)
			return nil, err
		}
		s.cfg.Log.Error("Failed to create booking", "item_id", item.ID, "error", err)
		return nil, apperrors.AsAppError(err)
	}

	metrics.IncBooking(metrics.OutcomeCreated)
	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"item_id", booking.ItemID,
		"booker_id", booking.BookerID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	s.publish(ctx, events.BookingCreated, booking)

	return toResponse(booking, item), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string, requesterID string) (*model.BookingResponse, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if requesterID != booking.BookerID && requesterID != booking.OwnerID {
		s.cfg.Log.Warn("Booking requested by outsider", "id", id, "requester_id", requesterID)
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	item, err := s.lookupItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	return toResponse(booking, item), nil
}

// SetApproval records the owner's decision. Approval is one-shot: a booking
// that was already approved or rejected cannot be decided again, and the
// write itself is a compare-and-set so concurrent decisions cannot both win.
func (s *bookingService) SetApproval(ctx context.Context, id string, approved bool, requesterID string) (*model.BookingResponse, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.OwnerID != requesterID {
		s.cfg.Log.Warn("Approval attempted by non-owner", "id", id, "requester_id", requesterID)
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	if booking.Approved != nil {
		return nil, alreadyDecided(id)
	}

	updated, err := s.repo.SetApprovalIfPending(ctx, id, approved)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrAlreadyDecided):
			return nil, alreadyDecided(id)
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to set booking approval", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to set booking approval", err)
	}

	eventType, outcome := events.BookingRejected, metrics.OutcomeRejected
	if approved {
		eventType, outcome = events.BookingApproved, metrics.OutcomeApproved
	}
	metrics.IncBooking(outcome)
	s.cfg.Log.Info("Booking approval set", "id", id, "approved", approved)
	s.publish(ctx, eventType, updated)

	item, err := s.lookupItem(ctx, updated.ItemID)
	if err != nil {
		return nil, err
	}
	return toResponse(updated, item), nil
}

func (s *bookingService) ListByBooker(ctx context.Context, bookerID string, rawState string, limit int, offset int64) ([]*model.BookingResponse, error) {
	return s.list(ctx, bookerID, false, rawState, limit, offset)
}

func (s *bookingService) ListByOwner(ctx context.Context, ownerID string, rawState string, limit int, offset int64) ([]*model.BookingResponse, error) {
	return s.list(ctx, ownerID, true, rawState, limit, offset)
}

func (s *bookingService) list(ctx context.Context, userID string, asOwner bool, rawState string, limit int, offset int64) ([]*model.BookingResponse, error) {
	if limit < 0 || offset < 0 {
		return nil, apperrors.InvalidInput("from and size must not be negative")
	}

	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	st, err := state.Parse(rawState)
	if err != nil {
		return nil, apperrors.InvalidInput("Unknown state: " + strings.ToUpper(strings.TrimSpace(rawState)))
	}

	bookings, err := s.repo.FindByParticipant(ctx, repository.ParticipantQuery{
		UserID:  userID,
		AsOwner: asOwner,
		State:   st,
		Now:     s.now(),
	}, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings",
			"user_id", userID,
			"as_owner", asOwner,
			"state", st,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	items, err := s.itemsByID(ctx, bookings)
	if err != nil {
		return nil, err
	}

	responses := make([]*model.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, toResponse(b, items[b.ItemID]))
	}
	return responses, nil
}

// LastAndNextForItem is only filled in for the item's owner. Active bookings
// come back earliest first; the first one counts as "last" once it started.
func (s *bookingService) LastAndNextForItem(ctx context.Context, item *model.Item, requesterID string) (*model.BookingShort, *model.BookingShort, error) {
	if item == nil || item.OwnerID != requesterID {
		return nil, nil, nil
	}

	now := s.now()
	active, err := s.repo.FindActiveByItem(ctx, item.ID, now)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to load item bookings", err)
	}

	var last, next *model.Booking
	switch {
	case len(active) > 0 && !active[0].StartTime.After(now):
		last = active[0]
		if len(active) > 1 {
			next = active[1]
		}
	default:
		if len(active) > 0 {
			next = active[0]
		}
		last, err = s.repo.FindLastPastByItem(ctx, item.ID, now)
		if err != nil {
			return nil, nil, apperrors.Internal("Failed to load item bookings", err)
		}
	}

	return last.Short(), next.Short(), nil
}

// HasNoPriorBooking reports whether the booker never had an approved booking
// of the item that already started. Comments are gated on it.
func (s *bookingService) HasNoPriorBooking(ctx context.Context, bookerID string, itemID string) (bool, error) {
	exists, err := s.repo.ExistsStartedApproved(ctx, bookerID, itemID, s.now())
	if err != nil {
		return false, apperrors.Internal("Failed to check booking history", err)
	}
	return !exists, nil
}

// --- Helpers ---

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) findItem(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemserrors.ErrNotFound) || errors.Is(err, itemserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Item", id)
		}
		s.cfg.Log.Error("Failed to retrieve item", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve item", err)
	}
	return item, nil
}

// lookupItem tolerates items deleted after they were booked.
func (s *bookingService) lookupItem(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.findItem(ctx, id)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, nil
	}
	return item, err
}

func (s *bookingService) itemsByID(ctx context.Context, bookings []*model.Booking) (map[string]*model.Item, error) {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, b := range bookings {
		if !seen[b.ItemID] {
			seen[b.ItemID] = true
			ids = append(ids, b.ItemID)
		}
	}

	byID := make(map[string]*model.Item, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to retrieve booked items", "count", len(ids), "error", err)
		return nil, apperrors.Internal("Failed to retrieve items", err)
	}
	for _, it := range items {
		byID[it.ID] = it
	}
	return byID, nil
}

func (s *bookingService) ensureUserExists(ctx context.Context, id string) error {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to check user existence", "user_id", id, "error", err)
		return apperrors.Internal("Failed to check user existence", err)
	}
	if !exists {
		return apperrors.NotFoundWithID("User", id)
	}
	return nil
}

func (s *bookingService) acquireItemLock(ctx context.Context, itemID string) (lock.ReleaseFunc, error) {
	release, err := s.locker.Acquire(ctx, lock.ItemKey(itemID))
	if err != nil {
		if errors.Is(err, lock.ErrWaitExpired) {
			s.cfg.Log.Warn("Timed out waiting for booking lock", "item_id", itemID, "error", err)
			metrics.IncBooking(metrics.OutcomeLockTimeout)
			return nil, apperrors.Timeout("Timed out waiting for other bookings of this item to complete")
		}
		s.cfg.Log.Error("Failed to acquire booking lock", "item_id", itemID, "error", err)
		return nil, apperrors.Internal("Failed to acquire booking lock", err)
	}
	return release, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	event := events.NewBookingEvent(eventType, booking, s.now())
	if err := s.publisher.PublishBooking(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func alreadyDecided(id string) error {
	return apperrors.Validation(fmt.Sprintf("Approval of booking %s was already decided", id), nil)
}

func toResponse(b *model.Booking, item *model.Item) *model.BookingResponse {
	resp := &model.BookingResponse{
		ID:        b.ID,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    string(state.Approval(b.Approved)),
		Item:      model.ItemRef{ID: b.ItemID},
		Booker:    model.UserRef{ID: b.BookerID},
	}
	if item != nil {
		resp.Item.Name = item.Name
	}
	return resp
}
