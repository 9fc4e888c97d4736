package handler

import (
	"encoding/json"
	"net/http"

	"shareit/internal/requests/service"
	httputil "shareit/pkg/http"
	"shareit/pkg/logger"
	"shareit/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const allSegment = "all"

type RequestHandler struct {
	service service.RequestService
	log     *logger.Logger
}

func NewRequestHandler(service service.RequestService, log *logger.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		log:     log,
	}
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var request model.ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteBadRequest", "error", writeErr)
		}
		return
	}

	created, err := h.service.Create(r.Context(), userID, &request)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RequestHandler) GetOwn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "GetOwn", err)
		return
	}

	requests, err := h.service.GetOwn(r.Context(), userID)
	if err != nil {
		h.writeError(w, "GetOwn", err)
		return
	}

	if err := httputil.WriteSuccess(w, requests); err != nil {
		h.log.Error("failed to write success response", "handler", "GetOwn", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RequestHandler) GetOthers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "GetOthers", err)
		return
	}

	limit, offset, err := httputil.ExtractFromSize(r)
	if err != nil {
		h.writeError(w, "GetOthers", err)
		return
	}

	requests, err := h.service.GetOthers(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(w, "GetOthers", err)
		return
	}

	if err := httputil.WriteSuccess(w, requests); err != nil {
		h.log.Error("failed to write success response", "handler", "GetOthers", "operation", "WriteSuccess", "error", err)
	}
}

// GetByID also serves GET /requests/all: httprouter does not allow a static
// segment next to a wildcard.
func (h *RequestHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == allSegment {
		h.GetOthers(w, r, ps)
		return
	}

	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	request, err := h.service.GetByID(r.Context(), id, userID)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, request); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RequestHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RequestHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/requests", h.Create)
	router.GET("/requests", h.GetOwn)
	router.GET("/requests/:id", h.GetByID)
}
