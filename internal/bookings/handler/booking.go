package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"shareit/internal/bookings/service"
	httputil "shareit/pkg/http"
	"shareit/pkg/logger"
	"shareit/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	stateParam    = "state"
	approvedParam = "approved"
	ownerSegment  = "owner"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteBadRequest", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// GetByID also serves GET /bookings/owner: httprouter does not allow a
// static segment next to a wildcard.
func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == ownerSegment {
		h.ListByOwner(w, r, ps)
		return
	}

	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), id, userID)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) SetApproval(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "SetApproval", err)
		return
	}

	approved, err := httputil.ExtractBool(r, approvedParam)
	if err != nil {
		h.writeError(w, "SetApproval", err)
		return
	}

	booking, err := h.service.SetApproval(r.Context(), id, approved, userID)
	if err != nil {
		h.writeError(w, "SetApproval", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "SetApproval", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListByBooker(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "ListByBooker", h.service.ListByBooker)
}

func (h *BookingHandler) ListByOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "ListByOwner", h.service.ListByOwner)
}

type listFunc func(ctx context.Context, userID string, rawState string, limit int, offset int64) ([]*model.BookingResponse, error)

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, name string, fetch listFunc) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	limit, offset, err := httputil.ExtractFromSize(r)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	bookings, err := fetch(r.Context(), userID, r.URL.Query().Get(stateParam), limit, offset)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/bookings", h.Create)
	router.GET("/bookings", h.ListByBooker)
	router.GET("/bookings/:id", h.GetByID)
	router.PATCH("/bookings/:id", h.SetApproval)
}
