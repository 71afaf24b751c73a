package jwt

import (
	"context"
	"net/http"
	"strings"
)

type accountKey struct{}

// AccountFromContext returns the account id set by AccountMiddleware.
func AccountFromContext(ctx context.Context) string {
	id, _ := ctx.Value(accountKey{}).(string)
	return id
}

// WithAccount stores an account id in ctx.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountKey{}, accountID)
}

// AccountMiddleware resolves the caller's account from a bearer token. With
// a nil token service every request runs as localAccount.
func AccountMiddleware(tokens Service, localAccount string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), localAccount)))
				return
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), claims.Subject)))
		})
	}
}
