package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mealshare/mealshare-be/internal/auth"
	"github.com/mealshare/mealshare-be/internal/http/respond"
)

type contextKey struct{ name string }

var identityKey = &contextKey{name: "identity"}

// RequireAuth verifies the bearer token and stores the identity in the
// request context. Requests without a valid identity are rejected with
// 401 before any handler or store access runs.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respond.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			identity, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom extracts the authenticated identity placed by RequireAuth.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}
