package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"timber-backend/internal/auth"
	"timber-backend/internal/models"
	"timber-backend/internal/repositories"
	"timber-backend/internal/services"
	"timber-backend/pkg/utils"
)

type contextKey string

const (
	ActorKey     contextKey = "actor"
	RequestIDKey contextKey = "request_id"
)

// ViewAsHeader lets an admin act on another organisation's data
const ViewAsHeader = "X-View-As-Organisation"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      repositories.UserStore
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, users repositories.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
	}
}

var (
	errNoToken   = errors.New("authorization token required")
	errBadToken  = errors.New("invalid or expired token")
	errSuspended = errors.New("account suspended")
)

// ResolveActor validates a token and builds the actor from the current user
// row, so role changes and suspensions apply immediately
func (m *AuthMiddleware) ResolveActor(ctx context.Context, token, viewAs string) (services.Actor, int, error) {
	if token == "" {
		return services.Actor{}, http.StatusUnauthorized, errNoToken
	}
	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		return services.Actor{}, http.StatusUnauthorized, errBadToken
	}

	user, err := m.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return services.Actor{}, http.StatusUnauthorized, errBadToken
	}
	if !user.IsActive {
		return services.Actor{}, http.StatusForbidden, errSuspended
	}

	actor := services.Actor{
		UserID:             user.ID,
		Role:               user.Role,
		OrganisationID:     user.OrganisationID,
		HomeOrganisationID: user.OrganisationID,
	}
	if viewAs = strings.TrimSpace(viewAs); viewAs != "" {
		orgID, err := strconv.Atoi(viewAs)
		if err != nil || orgID <= 0 {
			return services.Actor{}, http.StatusBadRequest, errors.New("invalid " + ViewAsHeader + " header")
		}
		if user.Role != models.RoleAdmin {
			return services.Actor{}, http.StatusForbidden, errors.New("only admins can view other organisations")
		}
		actor.OrganisationID = orgID
	}
	return actor, http.StatusOK, nil
}

func bearerToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Authenticate is a middleware that validates JWT bearer tokens
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return m.authenticate(next, bearerToken)
}

// AuthenticateQuery reads the token from the token query parameter, for
// websocket clients that cannot set headers
func (m *AuthMiddleware) AuthenticateQuery(next http.Handler) http.Handler {
	return m.authenticate(next, func(r *http.Request) string {
		return r.URL.Query().Get("token")
	})
}

func (m *AuthMiddleware) authenticate(next http.Handler, token func(*http.Request) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, status, err := m.ResolveActor(r.Context(), token(r), r.Header.Get(ViewAsHeader))
		if err != nil {
			utils.Error(w, status, err.Error())
			return
		}
		if h, ok := r.Context().Value(actorHolderKey).(*actorHolder); ok {
			h.userID, h.orgID = actor.UserID, actor.OrganisationID
		}
		ctx := context.WithValue(r.Context(), ActorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActorFromContext extracts the authenticated actor from request context
func GetActorFromContext(ctx context.Context) (services.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(services.Actor)
	return actor, ok
}

// RequireRole is a middleware that ensures the user has one of the allowed
// roles. It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActorFromContext(r.Context())
			if !ok {
				utils.Error(w, http.StatusUnauthorized, errNoToken.Error())
				return
			}
			for _, role := range allowedRoles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.Error(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
