package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionIDKey holds the guest cart session token in the request context
const SessionIDKey contextKey = "session_id"

// GuestSessionMiddleware assigns every visitor a cart session token. An
// existing cookie is reused; otherwise a fresh token is issued and set. The
// token only identifies an anonymous cart in redis, it carries no identity.
func GuestSessionMiddleware(cookieName string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string

			if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					sessionID = cookie.Value
				}
			}

			if sessionID == "" {
				sessionID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID extracts the guest cart session token from the context
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok
}
