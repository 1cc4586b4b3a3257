package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"repairflow/internal/commons"
)

type Verifier interface {
	CookieName() string
	Verify(ctx context.Context, token string) (*User, error)
}

type contextKey struct{}

func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(contextKey{}).(*User)
	return user, ok && user != nil
}

// RequireSession rejects requests without a verified session cookie.
func RequireSession(verifier Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.With(zap.String("traceId", commons.TraceID(r.Context())))

			var token string
			if cookie, err := r.Cookie(verifier.CookieName()); err == nil {
				token = cookie.Value
			}

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				commons.WriteError(w, r, err, reqLogger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
