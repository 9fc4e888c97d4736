package service

import (
	"context"
	"errors"

	requestserrors "shareit/internal/requests/errors"
	"shareit/internal/requests/repository"
	"shareit/internal/requests/validator"
	"shareit/pkg/config"
	apperrors "shareit/pkg/errors"
	"shareit/pkg/model"
	"shareit/pkg/sanitizer"
)

type RequestService interface {
	Create(ctx context.Context, requesterID string, request *model.ItemRequest) (*model.ItemRequestResponse, error)
	GetOwn(ctx context.Context, requesterID string) ([]*model.ItemRequestResponse, error)
	GetOthers(ctx context.Context, userID string, limit int, offset int64) ([]*model.ItemRequestResponse, error)
	GetByID(ctx context.Context, id string, userID string) (*model.ItemRequestResponse, error)
}

type UserLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// AnswerLookup loads the items created in reply to requests.
type AnswerLookup interface {
	FindByRequestIDs(ctx context.Context, requestIDs []string) ([]*model.Item, error)
}

type requestService struct {
	repo      repository.RequestRepository
	users     UserLookup
	answers   AnswerLookup
	validator *validator.RequestValidator
	cfg       *config.Config
}

func NewRequestService(
	repo repository.RequestRepository,
	users UserLookup,
	answers AnswerLookup,
	validator *validator.RequestValidator,
	cfg *config.Config,
) RequestService {
	return &requestService{
		repo:      repo,
		users:     users,
		answers:   answers,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *requestService) Create(ctx context.Context, requesterID string, request *model.ItemRequest) (*model.ItemRequestResponse, error) {
	request.ID = ""
	request.RequesterID = requesterID
	request.Description = sanitizer.NormalizeDescription(request.Description)

	if err := s.validator.Validate(request); err != nil {
		s.cfg.Log.Warn("Item request validation failed", "requester_id", requesterID, "error", err)
		return nil, apperrors.Validation("Item request validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.ensureUserExists(ctx, requesterID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, request); err != nil {
		s.cfg.Log.Error("Failed to create item request", "requester_id", requesterID, "error", err)
		return nil, apperrors.Internal("Failed to create item request", err)
	}

	s.cfg.Log.Info("Item request created successfully", "id", request.ID, "requester_id", requesterID)
	return request.Response(nil), nil
}

func (s *requestService) GetOwn(ctx context.Context, requesterID string) ([]*model.ItemRequestResponse, error) {
	if err := s.ensureUserExists(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.repo.FindByRequester(ctx, requesterID)
	if err != nil {
		return nil, s.mapError(err, "")
	}
	return s.withAnswers(ctx, requests)
}

func (s *requestService) GetOthers(ctx context.Context, userID string, limit int, offset int64) ([]*model.ItemRequestResponse, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.FindOthers(ctx, userID, limit, offset)
	if err != nil {
		return nil, s.mapError(err, "")
	}
	return s.withAnswers(ctx, requests)
}

func (s *requestService) GetByID(ctx context.Context, id string, userID string) (*model.ItemRequestResponse, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id)
	}

	responses, err := s.withAnswers(ctx, []*model.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

func (s *requestService) withAnswers(ctx context.Context, requests []*model.ItemRequest) ([]*model.ItemRequestResponse, error) {
	responses := make([]*model.ItemRequestResponse, 0, len(requests))
	if len(requests) == 0 {
		return responses, nil
	}

	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}

	items, err := s.answers.FindByRequestIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to retrieve request answers", "error", err)
		return nil, apperrors.Internal("Failed to retrieve request answers", err)
	}

	byRequest := make(map[string][]*model.Item)
	for _, it := range items {
		byRequest[it.RequestID] = append(byRequest[it.RequestID], it)
	}

	for _, r := range requests {
		responses = append(responses, r.Response(byRequest[r.ID]))
	}
	return responses, nil
}

func (s *requestService) ensureUserExists(ctx context.Context, id string) error {
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

func (s *requestService) mapError(err error, id string) error {
	if errors.Is(err, requestserrors.ErrNotFound) || errors.Is(err, requestserrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Request", id)
	}
	s.cfg.Log.Error("Item request repository failure", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve item requests", err)
}
