package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/google/uuid"
)

const maxSessionIDLength = 128

// SessionMiddleware 優先使用 X-Session-ID header，其次 sid cookie，都沒有時產生新的 session
func SessionMiddleware(cookieTTL time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := r.Header.Get(constants.SessionHeader)
			if sid == "" {
				if c, err := r.Cookie(constants.SessionCookieName); err == nil {
					sid = c.Value
				}
			}
			if sid == "" || len(sid) > maxSessionIDLength {
				sid = uuid.New().String()
				cookie := &http.Cookie{
					Name:     constants.SessionCookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				}
				if cookieTTL > 0 {
					cookie.MaxAge = int(cookieTTL.Seconds())
				}
				http.SetCookie(w, cookie)
			}
			w.Header().Set(constants.SessionHeader, sid)

			ctx := context.WithValue(r.Context(), constants.SessionIDKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
