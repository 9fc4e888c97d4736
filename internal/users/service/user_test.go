package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	userserrors "shareit/internal/users/errors"
	"shareit/internal/users/validator"
	"shareit/pkg/config"
	mongotx "shareit/pkg/db/mongo"
	apperrors "shareit/pkg/errors"
	"shareit/pkg/logger"
	"shareit/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Fakes
// ────────────────────────────────────────────────

type fakeUserRepository struct {
	users  map[string]*model.User
	nextID int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*model.User{}}
}

func (r *fakeUserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.users {
		if u.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

func (r *fakeUserRepository) Create(ctx context.Context, user *model.User) error {
	if r.emailTaken(user.Email, "") {
		return fmt.Errorf("%w: %s", userserrors.ErrDuplicateEmail, user.Email)
	}
	r.nextID++
	user.ID = fmt.Sprintf("%024x", r.nextID)
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *fakeUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, userserrors.ErrNotFound
}

func (r *fakeUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	return nil, nil
}

func (r *fakeUserRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
	out := []*model.User{}
	for i := 1; i <= r.nextID; i++ {
		if u, ok := r.users[fmt.Sprintf("%024x", i)]; ok {
			out = append(out, u)
		}
	}
	if offset >= int64(len(out)) {
		return []*model.User{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepository) Update(ctx context.Context, id string, update *model.UserUpdate) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	if update.Email != nil && r.emailTaken(*update.Email, id) {
		return nil, userserrors.ErrDuplicateEmail
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return userserrors.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type fakeItemCleaner struct {
	owners []string
	err    error
}

func (c *fakeItemCleaner) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	c.owners = append(c.owners, ownerID)
	return 2, c.err
}

func newTestService() (*userService, *fakeUserRepository, *fakeItemCleaner) {
	log := logger.New(logger.Config{
		Level:   "info",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{Log: log}
	repo := newFakeUserRepository()
	items := &fakeItemCleaner{}
	svc := NewUserService(repo, items, validator.NewUserValidator(log), cfg).(*userService)
	return svc, repo, items
}

func strPtr(s string) *string {
	return &s
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestCreate_NormalizesInput(t *testing.T) {
	svc, _, _ := newTestService()

	user, err := svc.Create(context.Background(), &model.User{Name: "  Ann   Lee ", Email: " Ann@Example.com "})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ann Lee", user.Name)
	assert.Equal(t, "ann@example.com", user.Email)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), &model.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.User{Name: "Other", Email: "ANN@example.com"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestCreate_Invalid(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Create(context.Background(), &model.User{Name: "Ann", Email: "nope"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Empty(t, repo.users)
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService()
	ann, err := svc.Create(context.Background(), &model.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &model.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), ann.ID, &model.UserUpdate{Name: strPtr(" Annie ")})
	require.NoError(t, err)
	assert.Equal(t, "Annie", updated.Name)
	assert.Equal(t, "ann@example.com", updated.Email)

	_, err = svc.Update(context.Background(), ann.ID, &model.UserUpdate{Email: strPtr("bob@example.com")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = svc.Update(context.Background(), ann.ID, &model.UserUpdate{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.Update(context.Background(), "missing", &model.UserUpdate{Name: strPtr("X")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDelete_RemovesOwnedItems(t *testing.T) {
	svc, repo, items := newTestService()
	ann, err := svc.Create(context.Background(), &model.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), ann.ID))
	assert.Equal(t, []string{ann.ID}, items.owners)
	assert.NotContains(t, repo.users, ann.ID)

	err = svc.Delete(context.Background(), ann.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDelete_ItemCleanupFailureKeepsUser(t *testing.T) {
	svc, repo, items := newTestService()
	ann, err := svc.Create(context.Background(), &model.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	items.err = errors.New("write conflict")

	err = svc.Delete(context.Background(), ann.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	assert.Contains(t, repo.users, ann.ID)
}

func TestGetAll_Paging(t *testing.T) {
	svc, _, _ := newTestService()
	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.Create(context.Background(), &model.User{Name: name, Email: name + "@example.com"})
		require.NoError(t, err)
	}

	all, err := svc.GetAll(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := svc.GetAll(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Name)
}
