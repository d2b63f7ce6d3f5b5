package middleware

import (
	"net/http"

	"ffstore/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin gates the admin panel routes. It relies on AuthMiddleware
// having already attached the token claims to the context.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok || role != domain.RoleAdmin {
				logger.Warn("admin route refused",
					zap.String("path", r.URL.Path),
					zap.String("role", role),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
