package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/api"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

// AdminAuthMiddleware 驗證 Authorization: Bearer <token>，通過後將 claims 放入 ctx
func AdminAuthMiddleware(authService service.IAdminAuthService) func(next http.Handler) http.Handler {
	if authService == nil {
		panic("AdminAuthMiddleware dependency authService is nil")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorizationHeader := r.Header.Get(string(constants.AuthorizationHeaderKey))
			fields := strings.Fields(authorizationHeader)
			if len(fields) < 2 {
				api.ErrorJSON(w, http.StatusUnauthorized, errors.New("invalid authorization header format"), "unauthenticated")
				return
			}
			if strings.ToLower(fields[0]) != string(constants.AuthorizationTypeBearer) {
				api.ErrorJSON(w, http.StatusUnauthorized, errors.New("unsupported authorization type"), "unauthenticated")
				return
			}

			claims, err := authService.VerifyToken(fields[1])
			if err != nil {
				api.ErrorJSON(w, http.StatusUnauthorized, service.ErrInvalidToken, "unauthenticated")
				return
			}

			ctx := context.WithValue(r.Context(), constants.AuthorizationPayloadKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware 以來源 IP 為 key 的 token bucket
func RateLimitMiddleware(limiter *ratelimit.KeyedLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				api.ErrorJSON(w, http.StatusTooManyRequests, nil, "too many attempts, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
