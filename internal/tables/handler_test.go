package tables

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/pkg/enums/tablestatus"
)

func newTestRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.Middleware(nil))
	h.RegisterRoutes(r)
	return r
}

func asRole(req *http.Request, role auth.Role) *http.Request {
	req.Header.Set(auth.HeaderActorID, uuid.New().String())
	req.Header.Set(auth.HeaderActorRole, string(role))
	return req
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	if err := json.Unmarshal(body.Bytes(), &env); err != nil {
		t.Fatalf("cannot decode response: %v", err)
	}
	return env
}

func TestHandlerListTables(t *testing.T) {
	first := NewTable()
	first.Number = "1"
	second := NewTable()
	second.Number = "2"
	second.Floor = 2

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  float64
	}{
		{name: "all", query: "", expectedStatus: http.StatusOK, expectedCount: 2},
		{name: "byFloor", query: "?floor=2", expectedStatus: http.StatusOK, expectedCount: 1},
		{name: "invalidFilter", query: "?status=dirty", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewMockTableRepo(first, second), &MockStatusService{}, nil)
			req := asRole(httptest.NewRequest(http.MethodGet, "/tables"+tt.query, nil), auth.RoleSupervisor)
			w := httptest.NewRecorder()

			newTestRouter(h).ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}
			env := decodeEnvelope(t, w.Body)
			if env["count"] != tt.expectedCount {
				t.Errorf("count = %v, want %v", env["count"], tt.expectedCount)
			}
		})
	}
}

func TestHandlerGetTableStatus(t *testing.T) {
	orderID := uuid.New()
	table := NewTable()
	table.Number = "7"
	table.Claim(orderID, "tester")

	tests := []struct {
		name           string
		id             string
		expectedStatus int
		expectedReason string
	}{
		{name: "found", id: table.ID.String(), expectedStatus: http.StatusOK},
		{name: "notFound", id: uuid.New().String(), expectedStatus: http.StatusNotFound, expectedReason: apperr.ReasonTableNotFound},
		{name: "invalidID", id: "abc", expectedStatus: http.StatusBadRequest, expectedReason: apperr.ReasonInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewMockTableRepo(table), &MockStatusService{}, nil)
			req := asRole(httptest.NewRequest(http.MethodGet, "/tables/"+tt.id+"/status", nil), auth.RoleKitchen)
			w := httptest.NewRecorder()

			newTestRouter(h).ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			env := decodeEnvelope(t, w.Body)
			if tt.expectedReason != "" {
				if env["reason"] != tt.expectedReason {
					t.Errorf("reason = %v, want %s", env["reason"], tt.expectedReason)
				}
				return
			}
			data := env["data"].(map[string]interface{})
			if data["has_order"] != true || data["current_order_id"] != orderID.String() || data["table_number"] != "7" {
				t.Errorf("unexpected status view %v", data)
			}
		})
	}
}

func TestHandlerUpdateTableStatus(t *testing.T) {
	tableID := uuid.New()

	tests := []struct {
		name           string
		method         string
		role           auth.Role
		body           string
		serviceErr     error
		expectedStatus int
		expectCall     bool
	}{
		{name: "patchAvailable", method: http.MethodPatch, role: auth.RoleSupervisor, body: `{"status":"available"}`, expectedStatus: http.StatusOK, expectCall: true},
		{name: "putReserved", method: http.MethodPut, role: auth.RoleAdmin, body: `{"status":"reserved"}`, expectedStatus: http.StatusOK, expectCall: true},
		{name: "kitchenForbidden", method: http.MethodPatch, role: auth.RoleKitchen, body: `{"status":"available"}`, expectedStatus: http.StatusForbidden},
		{name: "invalidStatus", method: http.MethodPatch, role: auth.RoleSupervisor, body: `{"status":"closed"}`, expectedStatus: http.StatusBadRequest},
		{name: "invalidJSON", method: http.MethodPatch, role: auth.RoleSupervisor, body: `{`, expectedStatus: http.StatusBadRequest},
		{
			name:           "rejectedByService",
			method:         http.MethodPatch,
			role:           auth.RoleSupervisor,
			body:           `{"status":"available"}`,
			serviceErr:     apperr.Conflict(apperr.ReasonTableHasOrder, "Table has an active order"),
			expectedStatus: http.StatusConflict,
			expectCall:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockStatusService{}
			if tt.serviceErr != nil {
				svc.SetStatusFunc = func(ctx context.Context, actor auth.Actor, id uuid.UUID, change StatusChange) (*Table, error) {
					return nil, tt.serviceErr
				}
			}
			h := NewHandler(NewMockTableRepo(), svc, nil)
			req := asRole(httptest.NewRequest(tt.method, "/tables/"+tableID.String()+"/status", bytes.NewBufferString(tt.body)), tt.role)
			w := httptest.NewRecorder()

			newTestRouter(h).ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.expectedStatus, w.Body.String())
			}
			if (len(svc.Calls) == 1) != tt.expectCall {
				t.Errorf("service calls = %d, expectCall %v", len(svc.Calls), tt.expectCall)
			}
		})
	}
}

func TestHandlerRequiresActor(t *testing.T) {
	h := NewHandler(NewMockTableRepo(), &MockStatusService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/tables", nil)
	w := httptest.NewRecorder()

	newTestRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestEnsureTableSeedIsIdempotent(t *testing.T) {
	repo := NewMockTableRepo()
	s := tableSeed{Number: "12", Floor: 1, Capacity: 4}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.ensureTable(ctx, repo, nopLogger()); err != nil {
			t.Fatalf("ensureTable() error = %v", err)
		}
	}

	tables, _ := repo.List(ctx, Filter{})
	if len(tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tables))
	}
	if tables[0].Status != tablestatus.Statuses.Available || tables[0].Capacity != 4 {
		t.Errorf("unexpected seeded table %+v", tables[0])
	}
}
