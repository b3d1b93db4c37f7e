package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMiddleware(t *testing.T) {
	var got string
	h := SessionMiddleware(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = util.GetSessionID(r.Context())
	}))

	testCases := []struct {
		name       string
		setup      func(r *http.Request)
		wantSID    string
		wantCookie bool
	}{
		{
			name:    "header wins",
			setup:   func(r *http.Request) { r.Header.Set(constants.SessionHeader, "from-header") },
			wantSID: "from-header",
		},
		{
			name: "cookie fallback",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "from-cookie"})
			},
			wantSID: "from-cookie",
		},
		{
			name:       "generated",
			setup:      func(r *http.Request) {},
			wantCookie: true,
		},
		{
			name:       "oversized id replaced",
			setup:      func(r *http.Request) { r.Header.Set(constants.SessionHeader, string(bytes.Repeat([]byte("a"), 200))) },
			wantCookie: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got = ""
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, got)
			if tc.wantSID != "" {
				assert.Equal(t, tc.wantSID, got)
			}
			assert.Equal(t, got, rec.Header().Get(constants.SessionHeader))
			cookies := rec.Result().Cookies()
			if tc.wantCookie {
				require.Len(t, cookies, 1)
				assert.Equal(t, got, cookies[0].Value)
				assert.Equal(t, 3600, cookies[0].MaxAge)
			} else {
				assert.Empty(t, cookies)
			}
		})
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	auth, err := service.NewAdminAuthService("", "1234", "middleware-secret", time.Hour, nil)
	require.NoError(t, err)
	token, _, err := auth.Login("1234")
	require.NoError(t, err)

	var claims *service.AdminClaims
	h := AdminAuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = util.GetAdminClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer " + token, status: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + token, status: http.StatusOK},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "basic", header: "Basic " + token, status: http.StatusUnauthorized},
		{name: "tampered", header: "Bearer " + token + "x", status: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			claims = nil
			req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				require.NotNil(t, claims)
				assert.Equal(t, "admin", claims.Subject)
			} else {
				assert.Nil(t, claims)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewKeyedLimiter(ratelimit.PerMinute(2))
	defer limiter.Stop()

	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	// 不同來源各自計算
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1000"))
}

func TestRecoverMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RequestIdMiddleware(RecoverMiddleware(&logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(constants.RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "req-1")
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := LoggerMiddleware(&logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tea", nil))

	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"url":"/tea"`)
	assert.Contains(t, buf.String(), "request completed")
}
