package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tanutchapol/backend-ChatBot/internal/model/auth"
	"github.com/tanutchapol/backend-ChatBot/pkg/utils"
)

// HeaderAuthToken is the alternative to "Authorization: Bearer".
const HeaderAuthToken = "X-Auth-Token"

// Verifier resolves bearer tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (auth.User, bool)
}

type userKey struct{}

// TokenFromRequest reads the bearer token, falling back to the x-auth-token header.
func TokenFromRequest(r *http.Request) string {
	if token := bearerToken(r.Header); token != "" {
		return token
	}
	return strings.TrimSpace(r.Header.Get(HeaderAuthToken))
}

func bearerToken(h http.Header) string {
	value := h.Get("Authorization")
	if value == "" {
		return ""
	}
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests without a valid token and stores the user in the request context.
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := v.Verify(r.Context(), TokenFromRequest(r))
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
		})
	}
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(userKey{}).(auth.User)
	return user, ok
}
