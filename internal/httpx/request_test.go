package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name           string
		body           string
		wantOK         bool
		wantName       string
		expectedStatus int
	}{
		{name: "validBody", body: `{"name":"pizza"}`, wantOK: true, wantName: "pizza", expectedStatus: http.StatusOK},
		{name: "emptyBody", body: "", wantOK: true, expectedStatus: http.StatusOK},
		{name: "invalidJSON", body: "not json", wantOK: false, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var got payload
			ok := DecodeJSON(w, req, apt.NewNoopLogger(), &got)

			if ok != tt.wantOK {
				t.Fatalf("DecodeJSON() ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Name != tt.wantName {
				t.Errorf("DecodeJSON() name = %q, want %q", got.Name, tt.wantName)
			}
			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestUUIDParam(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		wantOK bool
	}{
		{name: "valid", value: "550e8400-e29b-41d4-a716-446655440000", wantOK: true},
		{name: "invalid", value: "not-a-uuid", wantOK: false},
		{name: "missing", value: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders/"+tt.value, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.value)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			_, ok := UUIDParam(w, req, apt.NewNoopLogger(), "id")
			if ok != tt.wantOK {
				t.Errorf("UUIDParam() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok && w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}
