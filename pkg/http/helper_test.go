package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "shareit/pkg/errors"
)

func TestExtractFromSize(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{name: "defaults", query: "", wantLimit: 0, wantOffset: 0},
		{name: "both given", query: "?from=4&size=2", wantLimit: 2, wantOffset: 4},
		{name: "only from", query: "?from=3", wantLimit: 0, wantOffset: 3},
		{name: "negative from", query: "?from=-1", wantErr: true},
		{name: "zero size", query: "?size=0", wantErr: true},
		{name: "negative size", query: "?size=-5", wantErr: true},
		{name: "non numeric size", query: "?size=ten", wantErr: true},
		{name: "non numeric from", query: "?from=x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/bookings"+tt.query, nil)
			limit, offset, err := ExtractFromSize(r)
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
					t.Fatalf("expected INVALID_INPUT, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got limit=%d offset=%d, want limit=%d offset=%d", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestExtractUserID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	if _, err := ExtractUserID(r); err == nil {
		t.Fatal("expected error for missing header")
	}

	r.Header.Set(UserIDHeader, " 65f1c0ffee ")
	id, err := ExtractUserID(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "65f1c0ffee" {
		t.Errorf("got %q", id)
	}
}

func TestExtractBool(t *testing.T) {
	r := httptest.NewRequest(http.MethodPatch, "/bookings/1?approved=true", nil)
	v, err := ExtractBool(r, "approved")
	if err != nil || !v {
		t.Fatalf("got %v, %v", v, err)
	}

	r = httptest.NewRequest(http.MethodPatch, "/bookings/1?approved=maybe", nil)
	if _, err := ExtractBool(r, "approved"); err == nil {
		t.Fatal("expected error for invalid bool")
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: apperrors.NotFound("Booking"), wantStatus: http.StatusNotFound},
		{name: "validation", err: apperrors.Validation("bad window", nil), wantStatus: http.StatusBadRequest},
		{name: "conflict", err: apperrors.Conflict("overlap"), wantStatus: http.StatusConflict},
		{name: "forbidden", err: apperrors.Forbidden("not owner"), wantStatus: http.StatusForbidden},
		{name: "plain error", err: http.ErrBodyNotAllowed, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteError(w, tt.err); err != nil {
				t.Fatalf("unexpected write error: %v", err)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
