package handler

import (
	"encoding/json"
	"net/http"

	"shareit/internal/items/service"
	httputil "shareit/pkg/http"
	"shareit/pkg/logger"
	"shareit/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	textParam     = "text"
	searchSegment = "search"
)

type ItemHandler struct {
	service service.ItemService
	log     *logger.Logger
}

func NewItemHandler(service service.ItemService, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		log:     log,
	}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	created, err := h.service.Create(r.Context(), userID, &item)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var update model.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeBadBody(w, "Update")
		return
	}

	item, err := h.service.Update(r.Context(), ps.ByName("id"), userID, &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

// GetByID also serves GET /items/search: httprouter does not allow a static
// segment next to a wildcard.
func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == searchSegment {
		h.Search(w, r, ps)
		return
	}

	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	item, err := h.service.GetByID(r.Context(), id, userID)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) ListByOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "ListByOwner", err)
		return
	}

	limit, offset, err := httputil.ExtractFromSize(r)
	if err != nil {
		h.writeError(w, "ListByOwner", err)
		return
	}

	items, err := h.service.ListByOwner(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(w, "ListByOwner", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByOwner", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	limit, offset, err := httputil.ExtractFromSize(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	items, err := h.service.Search(r.Context(), userID, r.URL.Query().Get(textParam), limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) AddComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "AddComment", err)
		return
	}

	var comment model.Comment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		h.writeBadBody(w, "AddComment")
		return
	}

	created, err := h.service.AddComment(r.Context(), ps.ByName("id"), userID, &comment)
	if err != nil {
		h.writeError(w, "AddComment", err)
		return
	}

	if err := httputil.WriteSuccess(w, created); err != nil {
		h.log.Error("failed to write success response", "handler", "AddComment", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) writeBadBody(w http.ResponseWriter, name string) {
	if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", name, "operation", "WriteBadRequest", "error", writeErr)
	}
}

func (h *ItemHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ItemHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/items", h.Create)
	router.GET("/items", h.ListByOwner)
	router.GET("/items/:id", h.GetByID)
	router.PATCH("/items/:id", h.Update)
	router.POST("/items/:id/comment", h.AddComment)
}
