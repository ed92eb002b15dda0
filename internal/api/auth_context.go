package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookblog/bookblog-server/internal/domain"
	domainerrors "github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// identityKey is the context key for the authenticated identity.
const identityKey ctxKey = "identity"

// GetIdentity returns the authenticated identity from context, or nil for
// an anonymous caller.
func GetIdentity(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(identityKey).(*domain.Identity)
	return identity
}

// WithIdentity stores the identity in context.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// authMiddleware validates Bearer tokens and stores the identity in context.
// Requests without a valid token continue anonymously; handlers decide
// whether that is acceptable.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || auth == nil {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := auth.VerifyToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireUser returns the authenticated identity, or 401.
func RequireUser(ctx context.Context) (*domain.Identity, error) {
	identity := GetIdentity(ctx)
	if identity == nil {
		return nil, domainerrors.Unauthorized("Authentication required")
	}
	return identity, nil
}

// RequireAdmin returns the authenticated identity when it holds the admin
// role: 401 when anonymous, 403 otherwise.
func RequireAdmin(ctx context.Context) (*domain.Identity, error) {
	identity, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() {
		return nil, domainerrors.Forbidden("Admin access required")
	}
	return identity, nil
}
