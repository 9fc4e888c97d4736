package service

import (
	"context"
	"errors"

	userserrors "shareit/internal/users/errors"
	"shareit/internal/users/repository"
	"shareit/internal/users/validator"
	"shareit/pkg/config"
	apperrors "shareit/pkg/errors"
	"shareit/pkg/model"
	"shareit/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type UserService interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.User, error)
	Update(ctx context.Context, id string, update *model.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// ItemCleaner removes the items a deleted user owned.
type ItemCleaner interface {
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

type userService struct {
	repo      repository.UserRepository
	items     ItemCleaner
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	items ItemCleaner,
	validator *validator.UserValidator,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		items:     items,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Create(ctx context.Context, user *model.User) (*model.User, error) {
	user.ID = ""
	user.Name = sanitizer.NormalizeName(user.Name)
	user.Email = sanitizer.NormalizeEmail(user.Email)

	if err := s.validator.Validate(user); err != nil {
		s.cfg.Log.Warn("User validation failed", "error", err)
		return nil, apperrors.Validation("User validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, s.mapError(err, "create", "")
	}

	s.cfg.Log.Info("User created successfully", "id", user.ID)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "retrieve", id)
	}
	return user, nil
}

func (s *userService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
	users, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, s.mapError(err, "retrieve", "")
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, id string, update *model.UserUpdate) (*model.User, error) {
	sanitizer.NormalizeOptional(update.Name, sanitizer.NormalizeName)
	sanitizer.NormalizeOptional(update.Email, sanitizer.NormalizeEmail)

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("User update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("User validation failed", map[string]any{"error": err.Error()})
	}

	user, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, s.mapError(err, "update", id)
	}

	s.cfg.Log.Info("User updated successfully", "id", id)
	return user, nil
}

// Delete removes the user together with every item they own.
func (s *userService) Delete(ctx context.Context, id string) error {
	var removedItems int64
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		removed, err := s.items.DeleteByOwner(sessCtx, id)
		if err != nil {
			return apperrors.Internal("Failed to delete user items", err)
		}
		removedItems = removed
		return s.repo.Delete(sessCtx, id)
	})
	if err != nil {
		return s.mapError(err, "delete", id)
	}

	s.cfg.Log.Info("User deleted successfully", "id", id, "items_removed", removedItems)
	return nil
}

func (s *userService) mapError(err error, action string, id string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, userserrors.ErrNotFound), errors.Is(err, userserrors.ErrInvalidID):
		return apperrors.NotFoundWithID("User", id)
	case errors.Is(err, userserrors.ErrDuplicateEmail):
		return apperrors.Conflict("Email is already registered")
	}
	s.cfg.Log.Error("User repository failure", "action", action, "id", id, "error", err)
	return apperrors.Internal("Failed to "+action+" user", err)
}
