package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/noah-isme/employee-tracker/internal/platform/httpx"
	"github.com/noah-isme/employee-tracker/internal/shared"
)

// Resolver turns a plaintext bearer token into the caller identity.
type Resolver interface {
	Resolve(ctx context.Context, plain string) (*shared.Identity, error)
}

// Middleware gates routes behind a bearer token.
type Middleware struct {
	Resolver Resolver
	Logger   *slog.Logger
}

// RequireToken rejects requests without a resolvable bearer token and stores the
// identity in the request context otherwise.
func (m Middleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		plain, ok := BearerToken(r.Header.Get("Authorization"))
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		identity, err := m.Resolver.Resolve(r.Context(), plain)
		if err != nil {
			if !errors.Is(err, shared.ErrUnauthorized) && m.Logger != nil {
				m.Logger.Error("resolve token", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithUser(r.Context(), identity)))
	})
}
