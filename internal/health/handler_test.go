package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shareit/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func get(h *Handler, path string) (*httptest.ResponseRecorder, Response) {
	router := httprouter.New()
	h.RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestHealth(t *testing.T) {
	rec, resp := get(NewHandler(failing, nil, logger.Discard()), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp.Status)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		database Pinger
		cache    Pinger
		wantCode int
		want     Response
	}{
		{"database only", ok, nil, http.StatusOK, Response{Status: "ready", Database: "ok"}},
		{"database and cache", ok, ok, http.StatusOK, Response{Status: "ready", Database: "ok", Cache: "ok"}},
		{"database down", failing, nil, http.StatusServiceUnavailable, Response{Status: "unavailable", Database: "error"}},
		{"cache down", ok, failing, http.StatusServiceUnavailable, Response{Status: "unavailable", Database: "ok", Cache: "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := get(NewHandler(tt.database, tt.cache, logger.Discard()), "/ready")
			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.want, resp)
		})
	}
}
