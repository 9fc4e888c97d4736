package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "shareit/pkg/errors"
	httputil "shareit/pkg/http"
	"shareit/pkg/logger"
	"shareit/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listCall struct {
	side   string
	userID string
	state  string
	limit  int
	offset int64
}

type mockBookingService struct {
	createFunc      func(ctx context.Context, bookerID string, req *model.BookingRequest) (*model.BookingResponse, error)
	setApprovalFunc func(ctx context.Context, id string, approved bool, requesterID string) (*model.BookingResponse, error)
	listErr         error
	calls           []listCall
}

func (m *mockBookingService) Create(ctx context.Context, bookerID string, req *model.BookingRequest) (*model.BookingResponse, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, bookerID, req)
	}
	return &model.BookingResponse{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string, requesterID string) (*model.BookingResponse, error) {
	if requesterID != "owner-1" {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return &model.BookingResponse{ID: id}, nil
}

func (m *mockBookingService) SetApproval(ctx context.Context, id string, approved bool, requesterID string) (*model.BookingResponse, error) {
	if m.setApprovalFunc != nil {
		return m.setApprovalFunc(ctx, id, approved, requesterID)
	}
	return &model.BookingResponse{ID: id}, nil
}

func (m *mockBookingService) ListByBooker(ctx context.Context, bookerID string, rawState string, limit int, offset int64) ([]*model.BookingResponse, error) {
	m.calls = append(m.calls, listCall{"booker", bookerID, rawState, limit, offset})
	return []*model.BookingResponse{}, m.listErr
}

func (m *mockBookingService) ListByOwner(ctx context.Context, ownerID string, rawState string, limit int, offset int64) ([]*model.BookingResponse, error) {
	m.calls = append(m.calls, listCall{"owner", ownerID, rawState, limit, offset})
	return []*model.BookingResponse{}, m.listErr
}

func (m *mockBookingService) LastAndNextForItem(ctx context.Context, item *model.Item, requesterID string) (*model.BookingShort, *model.BookingShort, error) {
	return nil, nil, nil
}

func (m *mockBookingService) HasNoPriorBooking(ctx context.Context, bookerID string, itemID string) (bool, error) {
	return true, nil
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(httputil.UserIDHeader, userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreate(t *testing.T) {
	var gotBooker string
	var gotReq *model.BookingRequest
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, bookerID string, req *model.BookingRequest) (*model.BookingResponse, error) {
			gotBooker, gotReq = bookerID, req
			return &model.BookingResponse{ID: "b1", Status: "WAITING"}, nil
		},
	}
	router := newRouter(svc)

	body := `{"item_id":"650000000000000000000001","start":"2030-01-01T10:00:00Z","end":"2030-01-01T12:00:00Z"}`
	rec := serve(router, http.MethodPost, "/bookings", "booker-1", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "booker-1", gotBooker)
	assert.Equal(t, "650000000000000000000001", gotReq.ItemID)
	assert.Equal(t, time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC), gotReq.StartTime)
	assert.Contains(t, rec.Body.String(), `"status":"WAITING"`)
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		body     string
		svcErr   error
		wantCode int
	}{
		{"missing user header", "", `{}`, nil, http.StatusBadRequest},
		{"malformed body", "booker-1", `{"start":`, nil, http.StatusBadRequest},
		{"overlap", "booker-1", `{}`, apperrors.Conflict("overlaps"), http.StatusConflict},
		{"validation", "booker-1", `{}`, apperrors.Validation("bad window", nil), http.StatusBadRequest},
		{"unknown item", "booker-1", `{}`, apperrors.NotFound("Item"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				createFunc: func(ctx context.Context, bookerID string, req *model.BookingRequest) (*model.BookingResponse, error) {
					return nil, tt.svcErr
				},
			}
			rec := serve(newRouter(svc), http.MethodPost, "/bookings", tt.userID, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestGetByID(t *testing.T) {
	router := newRouter(&mockBookingService{})

	rec := serve(router, http.MethodGet, "/bookings/b1", "owner-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"b1"`)

	rec = serve(router, http.MethodGet, "/bookings/b1", "outsider", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.CodeNotFound, decodeError(t, rec).Code)
}

func TestSetApproval(t *testing.T) {
	var gotApproved bool
	svc := &mockBookingService{
		setApprovalFunc: func(ctx context.Context, id string, approved bool, requesterID string) (*model.BookingResponse, error) {
			gotApproved = approved
			return &model.BookingResponse{ID: id, Status: "APPROVED"}, nil
		},
	}
	router := newRouter(svc)

	rec := serve(router, http.MethodPatch, "/bookings/b1?approved=true", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotApproved)

	rec = serve(router, http.MethodPatch, "/bookings/b1", "owner-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodPatch, "/bookings/b1?approved=maybe", "owner-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetApproval_AlreadyDecided(t *testing.T) {
	svc := &mockBookingService{
		setApprovalFunc: func(ctx context.Context, id string, approved bool, requesterID string) (*model.BookingResponse, error) {
			return nil, apperrors.Validation("already decided", nil)
		},
	}

	rec := serve(newRouter(svc), http.MethodPatch, "/bookings/b1?approved=false", "owner-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeValidation, decodeError(t, rec).Code)
}

func TestList_Routing(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   listCall
	}{
		{
			name:   "booker defaults",
			target: "/bookings",
			want:   listCall{"booker", "u1", "", 0, 0},
		},
		{
			name:   "booker with paging",
			target: "/bookings?state=past&from=4&size=2",
			want:   listCall{"booker", "u1", "past", 2, 4},
		},
		{
			name:   "owner",
			target: "/bookings/owner?state=FUTURE",
			want:   listCall{"owner", "u1", "FUTURE", 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{}
			rec := serve(newRouter(svc), http.MethodGet, tt.target, "u1", "")

			require.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, svc.calls, 1)
			assert.Equal(t, tt.want, svc.calls[0])
		})
	}
}

func TestList_BadPaging(t *testing.T) {
	for _, query := range []string{"from=-1", "size=0", "size=-3", "from=abc"} {
		t.Run(query, func(t *testing.T) {
			svc := &mockBookingService{}
			rec := serve(newRouter(svc), http.MethodGet, "/bookings?"+query, "u1", "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.calls)
		})
	}
}

func TestList_UnknownState(t *testing.T) {
	svc := &mockBookingService{listErr: apperrors.InvalidInput("Unknown state: BOGUS")}

	rec := serve(newRouter(svc), http.MethodGet, "/bookings?state=bogus", "u1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeInvalidInput, resp.Code)
	assert.Equal(t, "Unknown state: BOGUS", resp.Error)
}
