package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/pkg/utilities"
)

// Middleware returns a middleware that requires a valid Bearer token and
// injects the authenticated user id into the request context.
func Middleware(svc *TokenService, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				utilities.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			userID, err := svc.Verify(token)
			if err != nil {
				logger.Debugw("token verification failed", "err", err)
				utilities.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
