package service

import (
	"context"
	"errors"
	"fmt"

	itemserrors "shareit/internal/items/errors"
	"shareit/internal/items/repository"
	"shareit/internal/items/validator"
	"shareit/pkg/config"
	apperrors "shareit/pkg/errors"
	"shareit/pkg/model"
	"shareit/pkg/sanitizer"
)

type ItemService interface {
	Create(ctx context.Context, ownerID string, item *model.Item) (*model.ItemResponse, error)
	Update(ctx context.Context, id string, ownerID string, update *model.ItemUpdate) (*model.ItemResponse, error)
	GetByID(ctx context.Context, id string, requesterID string) (*model.ItemResponse, error)
	ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.ItemResponse, error)
	Search(ctx context.Context, requesterID string, text string, limit int, offset int64) ([]*model.ItemResponse, error)
	AddComment(ctx context.Context, itemID string, authorID string, comment *model.Comment) (*model.CommentResponse, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

type RequestLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// BookingSummary is the part of the booking service items depend on.
type BookingSummary interface {
	LastAndNextForItem(ctx context.Context, item *model.Item, requesterID string) (last *model.BookingShort, next *model.BookingShort, err error)
	HasNoPriorBooking(ctx context.Context, bookerID string, itemID string) (bool, error)
}

type itemService struct {
	repo      repository.ItemRepository
	comments  repository.CommentRepository
	users     UserDirectory
	requests  RequestLookup
	bookings  BookingSummary
	validator *validator.ItemValidator
	cfg       *config.Config
}

func NewItemService(
	repo repository.ItemRepository,
	comments repository.CommentRepository,
	users UserDirectory,
	requests RequestLookup,
	bookings BookingSummary,
	validator *validator.ItemValidator,
	cfg *config.Config,
) ItemService {
	return &itemService{
		repo:      repo,
		comments:  comments,
		users:     users,
		requests:  requests,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *itemService) Create(ctx context.Context, ownerID string, item *model.Item) (*model.ItemResponse, error) {
	item.ID = ""
	item.OwnerID = ownerID
	item.Name = sanitizer.NormalizeName(item.Name)
	item.Description = sanitizer.NormalizeDescription(item.Description)

	if err := s.validator.Validate(item); err != nil {
		s.cfg.Log.Warn("Item validation failed", "owner_id", ownerID, "error", err)
		return nil, apperrors.Validation("Item validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.ensureExists(ctx, s.users, "User", ownerID); err != nil {
		return nil, err
	}

	if item.RequestID != "" {
		if err := s.ensureExists(ctx, s.requests, "Request", item.RequestID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.cfg.Log.Error("Failed to create item", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to create item", err)
	}

	s.cfg.Log.Info("Item created successfully", "id", item.ID, "owner_id", ownerID, "request_id", item.RequestID)
	return item.Response(), nil
}

func (s *itemService) Update(ctx context.Context, id string, ownerID string, update *model.ItemUpdate) (*model.ItemResponse, error) {
	sanitizer.NormalizeOptional(update.Name, sanitizer.NormalizeName)
	sanitizer.NormalizeOptional(update.Description, sanitizer.NormalizeDescription)

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Item update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Item validation failed", map[string]any{"error": err.Error()})
	}

	existing, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != ownerID {
		s.cfg.Log.Warn("Item update attempted by non-owner", "id", id, "user_id", ownerID)
		return nil, apperrors.Forbidden(fmt.Sprintf("User %s does not own item %s", ownerID, id))
	}

	item, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, s.mapError(err, "update", id)
	}

	s.cfg.Log.Info("Item updated successfully", "id", id)

	responses, err := s.enrich(ctx, []*model.Item{item}, ownerID)
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

func (s *itemService) GetByID(ctx context.Context, id string, requesterID string) (*model.ItemResponse, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}

	responses, err := s.enrich(ctx, []*model.Item{item}, requesterID)
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

func (s *itemService) ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.ItemResponse, error) {
	items, err := s.repo.FindByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, s.mapError(err, "retrieve", "")
	}
	return s.enrich(ctx, items, ownerID)
}

// Search returns nothing for blank text instead of every available item.
func (s *itemService) Search(ctx context.Context, requesterID string, text string, limit int, offset int64) ([]*model.ItemResponse, error) {
	text = sanitizer.NormalizeSearchText(text)
	if text == "" {
		return []*model.ItemResponse{}, nil
	}

	items, err := s.repo.Search(ctx, text, limit, offset)
	if err != nil {
		return nil, s.mapError(err, "search", "")
	}
	return s.enrich(ctx, items, requesterID)
}

// AddComment is only allowed after the author had an approved booking of
// the item that already started.
func (s *itemService) AddComment(ctx context.Context, itemID string, authorID string, comment *model.Comment) (*model.CommentResponse, error) {
	comment.Text = sanitizer.TrimAndNormalize(comment.Text)
	if err := s.validator.ValidateComment(comment); err != nil {
		return nil, apperrors.Validation("Comment validation failed", map[string]any{"error": err.Error()})
	}

	noBooking, err := s.bookings.HasNoPriorBooking(ctx, authorID, itemID)
	if err != nil {
		return nil, err
	}
	if noBooking {
		s.cfg.Log.Warn("Comment rejected without prior booking", "item_id", itemID, "author_id", authorID)
		return nil, apperrors.Validation(
			fmt.Sprintf("User %s has not booked item %s", authorID, itemID), nil)
	}

	authors, err := s.users.FindByIDs(ctx, []string{authorID})
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve comment author", err)
	}
	if len(authors) == 0 {
		return nil, apperrors.NotFoundWithID("User", authorID)
	}

	if _, err := s.findItem(ctx, itemID); err != nil {
		return nil, err
	}

	comment.ID = ""
	comment.ItemID = itemID
	comment.AuthorID = authorID
	if err := s.comments.Create(ctx, comment); err != nil {
		s.cfg.Log.Error("Failed to create comment", "item_id", itemID, "error", err)
		return nil, apperrors.Internal("Failed to create comment", err)
	}

	s.cfg.Log.Info("Comment added successfully", "id", comment.ID, "item_id", itemID, "author_id", authorID)
	return &model.CommentResponse{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorName: authors[0].Name,
		CreatedAt:  comment.CreatedAt,
	}, nil
}

// enrich attaches comments to every item and, for the owner, the last and
// next bookings.
func (s *itemService) enrich(ctx context.Context, items []*model.Item, requesterID string) ([]*model.ItemResponse, error) {
	responses := make([]*model.ItemResponse, 0, len(items))
	if len(items) == 0 {
		return responses, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}

	commentsByItem, err := s.commentsByItem(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		resp := it.Response()
		resp.LastBooking, resp.NextBooking, err = s.bookings.LastAndNextForItem(ctx, it, requesterID)
		if err != nil {
			return nil, err
		}
		if c, ok := commentsByItem[it.ID]; ok {
			resp.Comments = c
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *itemService) commentsByItem(ctx context.Context, itemIDs []string) (map[string][]*model.CommentResponse, error) {
	comments, err := s.comments.FindByItems(ctx, itemIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to retrieve comments", "error", err)
		return nil, apperrors.Internal("Failed to retrieve comments", err)
	}

	out := make(map[string][]*model.CommentResponse)
	if len(comments) == 0 {
		return out, nil
	}

	authorIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve comment authors", err)
	}
	names := make(map[string]string, len(authors))
	for _, a := range authors {
		names[a.ID] = a.Name
	}

	for _, c := range comments {
		out[c.ItemID] = append(out[c.ItemID], &model.CommentResponse{
			ID:         c.ID,
			Text:       c.Text,
			AuthorName: names[c.AuthorID],
			CreatedAt:  c.CreatedAt,
		})
	}
	return out, nil
}

func (s *itemService) findItem(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "retrieve", id)
	}
	return item, nil
}

type existenceChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

func (s *itemService) ensureExists(ctx context.Context, checker existenceChecker, resource string, id string) error {
	exists, err := checker.Exists(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to check existence", "resource", resource, "id", id, "error", err)
		return apperrors.Internal(fmt.Sprintf("Failed to check %s existence", resource), err)
	}
	if !exists {
		return apperrors.NotFoundWithID(resource, id)
	}
	return nil
}

func (s *itemService) mapError(err error, action string, id string) error {
	if errors.Is(err, itemserrors.ErrNotFound) || errors.Is(err, itemserrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Item", id)
	}
	s.cfg.Log.Error("Item repository failure", "action", action, "id", id, "error", err)
	return apperrors.Internal("Failed to "+action+" item", err)
}
