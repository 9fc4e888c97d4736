package health

import (
	"context"
	"net/http"
	"time"

	httputil "shareit/pkg/http"
	"shareit/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type Response struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

// Pinger checks one dependency, e.g. client.Client.PingMongo.
type Pinger func(ctx context.Context) error

type Handler struct {
	database Pinger
	cache    Pinger
	log      *logger.Logger
}

// NewHandler builds the liveness and readiness endpoints. cache may be nil
// when Redis is not configured.
func NewHandler(database Pinger, cache Pinger, log *logger.Logger) *Handler {
	return &Handler{
		database: database,
		cache:    cache,
		log:      log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := Response{Status: "ready", Database: "ok"}
	status := http.StatusOK

	if err := h.database(ctx); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		resp.Status, resp.Database = "unavailable", "error"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache(ctx); err != nil {
			h.log.Error("Cache health check failed",
				"error", err,
				"path", r.URL.Path,
			)
			resp.Status, resp.Cache = "unavailable", "error"
			status = http.StatusServiceUnavailable
		}
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
