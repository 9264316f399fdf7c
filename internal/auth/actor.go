// Package auth carries the authenticated caller through the order core.
// Sessions and tokens are resolved at the edge; this service trusts the
// identity headers set by the gateway and only enforces roles.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/httpx"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
	HeaderActorName = "X-Actor-Name"
)

type Role string

const (
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
	RoleKitchen    Role = "kitchen"
	RoleSystem     Role = "system"
)

func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleSupervisor:
		return RoleSupervisor, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleKitchen:
		return RoleKitchen, true
	default:
		return "", false
	}
}

// Actor is the identity every core operation is invoked with.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
	Name string    `json:"name,omitempty"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil
}

// CanMutate reports whether the actor may edit an order owned by ownerID.
// Admins bypass ownership.
func (a Actor) CanMutate(ownerID uuid.UUID) bool {
	return a.IsAdmin() || (a.ID != uuid.Nil && a.ID == ownerID)
}

func (a Actor) String() string {
	return string(a.Role) + ":" + a.ID.String()
}

// System is the actor used by maintenance passes and event consumers.
func System() Actor {
	return Actor{ID: uuid.MustParse("00000000-0000-0000-0000-00000000005e"), Role: RoleSystem, Name: "system"}
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok && !actor.IsZero()
}

// Middleware resolves the actor from the gateway headers. Requests without a
// valid identity pass through anonymous; routes decide with Require.
func Middleware(logger apt.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(HeaderActorID)
			if rawID == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(rawID)
			if err != nil {
				logger.Debug("ignoring malformed actor id", "actor_id", rawID)
				next.ServeHTTP(w, r)
				return
			}

			role, ok := ParseRole(r.Header.Get(HeaderActorRole))
			if !ok {
				logger.Debug("ignoring unknown actor role", "role", r.Header.Get(HeaderActorRole))
				next.ServeHTTP(w, r)
				return
			}

			actor := Actor{ID: id, Role: role, Name: r.Header.Get(HeaderActorName)}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// Require rejects anonymous requests with 401 and, when roles are given,
// callers outside them with 403.
func Require(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := FromContext(r.Context())
			if !ok {
				httpx.RespondError(w, apperr.Unauthenticated(apperr.ReasonNotAuthenticated, "Authentication required"))
				return
			}

			if len(roles) > 0 && !hasRole(actor, roles) {
				httpx.RespondError(w, apperr.Permission(apperr.ReasonRoleRequired, "Insufficient role for this operation"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(actor Actor, roles []Role) bool {
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}
