package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/utils"
)

// IdentityResolver turns an incoming request into an authenticated
// actor. It is injected so tests can substitute a deterministic
// resolver; production wires the JWT implementation below.
type IdentityResolver interface {
	Resolve(r *http.Request) (models.Actor, error)
}

type contextKey struct{}

// ActorFromContext returns the actor the auth middleware resolved.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(contextKey{}).(models.Actor)
	return actor, ok
}

// Auth rejects requests without a resolvable identity and stores the
// actor on the request context for the handlers.
func Auth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolver.Resolve(r)
			if err != nil {
				logging.Logger.Warnf("Event ID: AUTH_REJECTED, Description: Unauthenticated request to %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, actor)))
		})
	}
}

// JWTResolver resolves identities from Bearer tokens. The websocket
// endpoint also accepts the token as a query parameter because browser
// websocket clients cannot set headers.
type JWTResolver struct {
	jwt *utils.JWTService
}

func NewJWTResolver(jwt *utils.JWTService) *JWTResolver {
	return &JWTResolver{jwt: jwt}
}

func (j *JWTResolver) Resolve(r *http.Request) (models.Actor, error) {
	tokenStr := ""
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
	} else {
		tokenStr = r.URL.Query().Get("token")
	}
	if tokenStr == "" {
		return models.Actor{}, fmt.Errorf("authorization header missing")
	}

	claims, err := j.jwt.ValidateToken(tokenStr)
	if err != nil {
		return models.Actor{}, err
	}

	role := models.Role(claims.Role)
	if role != models.RoleManager && role != models.RoleEmployee {
		return models.Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	return models.Actor{ID: claims.UserID, Role: role}, nil
}
