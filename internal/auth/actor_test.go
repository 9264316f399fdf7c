package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestActorCanMutate(t *testing.T) {
	owner := uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
	other := uuid.MustParse("550e8400-e29b-41d4-a716-446655440002")

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{name: "owner", actor: Actor{ID: owner, Role: RoleSupervisor}, want: true},
		{name: "otherSupervisor", actor: Actor{ID: other, Role: RoleSupervisor}, want: false},
		{name: "admin", actor: Actor{ID: other, Role: RoleAdmin}, want: true},
		{name: "system", actor: System(), want: true},
		{name: "kitchen", actor: Actor{ID: other, Role: RoleKitchen}, want: false},
		{name: "anonymous", actor: Actor{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.actor.CanMutate(owner); got != tt.want {
				t.Errorf("CanMutate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMiddlewareAndRequire(t *testing.T) {
	actorID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440003")

	tests := []struct {
		name           string
		headers        map[string]string
		roles          []Role
		expectedStatus int
	}{
		{
			name:           "anonymous",
			headers:        nil,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformedID",
			headers:        map[string]string{HeaderActorID: "nope", HeaderActorRole: "supervisor"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknownRole",
			headers:        map[string]string{HeaderActorID: actorID.String(), HeaderActorRole: "waiter"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "supervisorAllowed",
			headers:        map[string]string{HeaderActorID: actorID.String(), HeaderActorRole: "supervisor"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "supervisorOnAdminRoute",
			headers:        map[string]string{HeaderActorID: actorID.String(), HeaderActorRole: "supervisor"},
			roles:          []Role{RoleAdmin},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "adminOnAdminRoute",
			headers:        map[string]string{HeaderActorID: actorID.String(), HeaderActorRole: "Admin"},
			roles:          []Role{RoleAdmin},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen Actor
			final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = FromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			h := Middleware(nil)(Require(tt.roles...)(final))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if tt.expectedStatus == http.StatusOK && seen.ID != actorID {
				t.Errorf("actor id = %v, want %v", seen.ID, actorID)
			}
		})
	}
}
