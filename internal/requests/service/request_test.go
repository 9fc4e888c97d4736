package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	requestserrors "shareit/internal/requests/errors"
	"shareit/internal/requests/validator"
	"shareit/pkg/config"
	apperrors "shareit/pkg/errors"
	"shareit/pkg/logger"
	"shareit/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequestRepository struct {
	requests []*model.ItemRequest
	clock    time.Time
}

func (r *fakeRequestRepository) Create(ctx context.Context, request *model.ItemRequest) error {
	r.clock = r.clock.Add(time.Minute)
	request.ID = fmt.Sprintf("%024x", len(r.requests)+1)
	request.CreatedAt = r.clock
	c := *request
	r.requests = append(r.requests, &c)
	return nil
}

func (r *fakeRequestRepository) FindByID(ctx context.Context, id string) (*model.ItemRequest, error) {
	for _, req := range r.requests {
		if req.ID == id {
			return req, nil
		}
	}
	return nil, requestserrors.ErrNotFound
}

func (r *fakeRequestRepository) newestFirst(keep func(*model.ItemRequest) bool, limit int, offset int64) []*model.ItemRequest {
	out := []*model.ItemRequest{}
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= int64(len(out)) {
		return []*model.ItemRequest{}
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (r *fakeRequestRepository) FindByRequester(ctx context.Context, requesterID string) ([]*model.ItemRequest, error) {
	return r.newestFirst(func(req *model.ItemRequest) bool { return req.RequesterID == requesterID }, 0, 0), nil
}

func (r *fakeRequestRepository) FindOthers(ctx context.Context, requesterID string, limit int, offset int64) ([]*model.ItemRequest, error) {
	return r.newestFirst(func(req *model.ItemRequest) bool { return req.RequesterID != requesterID }, limit, offset), nil
}

func (r *fakeRequestRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.FindByID(ctx, id)
	return err == nil, nil
}

type fakeUsers map[string]bool

func (f fakeUsers) Exists(ctx context.Context, id string) (bool, error) {
	return f[id], nil
}

type fakeAnswers struct {
	items []*model.Item
}

func (f *fakeAnswers) FindByRequestIDs(ctx context.Context, requestIDs []string) ([]*model.Item, error) {
	want := map[string]bool{}
	for _, id := range requestIDs {
		want[id] = true
	}
	var out []*model.Item
	for _, it := range f.items {
		if want[it.RequestID] {
			out = append(out, it)
		}
	}
	return out, nil
}

func newTestService() (*requestService, *fakeRequestRepository, *fakeAnswers) {
	log := logger.New(logger.Config{
		Level:   "info",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{Log: log}
	repo := &fakeRequestRepository{clock: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	answers := &fakeAnswers{}
	users := fakeUsers{"alice": true, "bob": true}
	svc := NewRequestService(repo, users, answers, validator.NewRequestValidator(log), cfg).(*requestService)
	return svc, repo, answers
}

func create(t *testing.T, svc *requestService, requester, description string) *model.ItemRequestResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), requester, &model.ItemRequest{Description: description})
	require.NoError(t, err)
	return resp
}

func TestCreate(t *testing.T) {
	svc, repo, _ := newTestService()

	resp := create(t, svc, "alice", "  Need a   ladder ")
	assert.Equal(t, "Need a ladder", resp.Description)
	assert.Empty(t, resp.Items)
	assert.Equal(t, "alice", repo.requests[0].RequesterID)

	_, err := svc.Create(context.Background(), "ghost", &model.ItemRequest{Description: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.Create(context.Background(), "alice", &model.ItemRequest{Description: "   "})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestGetOwn_NewestFirstWithAnswers(t *testing.T) {
	svc, _, answers := newTestService()
	older := create(t, svc, "alice", "ladder")
	newer := create(t, svc, "alice", "drill")
	create(t, svc, "bob", "saw")

	available := true
	answers.items = []*model.Item{{ID: "i1", Name: "Ladder", OwnerID: "bob", RequestID: older.ID, Available: &available}}

	own, err := svc.GetOwn(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, newer.ID, own[0].ID)
	assert.Equal(t, older.ID, own[1].ID)
	assert.Empty(t, own[0].Items)
	require.Len(t, own[1].Items, 1)
	assert.Equal(t, "bob", own[1].Items[0].OwnerID)
	assert.True(t, own[1].Items[0].Available)
}

func TestGetOthers(t *testing.T) {
	svc, _, _ := newTestService()
	create(t, svc, "alice", "ladder")
	first := create(t, svc, "bob", "saw")
	second := create(t, svc, "bob", "tent")

	others, err := svc.GetOthers(context.Background(), "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, second.ID, others[0].ID)
	assert.Equal(t, first.ID, others[1].ID)

	page, err := svc.GetOthers(context.Background(), "alice", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	_, err = svc.GetOthers(context.Background(), "ghost", 0, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestGetByID(t *testing.T) {
	svc, _, _ := newTestService()
	req := create(t, svc, "alice", "ladder")

	got, err := svc.GetByID(context.Background(), req.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "ladder", got.Description)

	_, err = svc.GetByID(context.Background(), req.ID, "ghost")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.GetByID(context.Background(), "650000000000000000000099", "bob")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
