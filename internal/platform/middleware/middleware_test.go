// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animeab/internal/platform/constants"
	"github.com/taibuivan/animeab/internal/platform/ctxutil"
	"github.com/taibuivan/animeab/internal/platform/middleware"
	"github.com/taibuivan/animeab/internal/platform/sec"
)

// stubVerifier accepts a fixed set of tokens.
type stubVerifier map[string]*sec.AuthClaims

func (s stubVerifier) VerifyToken(_ context.Context, token string) (*sec.AuthClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, errors.New("unknown token")
}

var verifier = stubVerifier{
	"admin-token":  {UserID: "1", Role: string(sec.RoleAdmin)},
	"member-token": {UserID: "2", Role: string(sec.RoleMember)},
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

func adminOnly() http.Handler {
	return middleware.Authenticate(verifier)(middleware.RequireRole(sec.RoleAdmin)(ok))
}

/*
TestRequireRole_Gate covers anonymous, member, admin and broken credentials.
*/
func TestRequireRole_Gate(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"anonymous", "", "", http.StatusUnauthorized},
		{"member", "Bearer member-token", "", http.StatusForbidden},
		{"admin_header", "Bearer admin-token", "", http.StatusOK},
		{"admin_cookie", "", "admin-token", http.StatusOK},
		{"bad_format", "Token admin-token", "", http.StatusUnauthorized},
		{"unknown_token", "Bearer nope", "", http.StatusUnauthorized},
		{"header_wins_over_cookie", "Bearer member-token", "admin-token", http.StatusForbidden},
		{"stale_cookie", "", "revoked-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/anime/movies", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: tt.cookie})
			}
			recorder := httptest.NewRecorder()

			adminOnly().ServeHTTP(recorder, request)

			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

/*
TestAuthenticate_StaleCookie lets a public route through as anonymous and
expires the cookie, while a bad header token is still refused.
*/
func TestAuthenticate_StaleCookie(t *testing.T) {
	var claims *sec.AuthClaims
	public := middleware.Authenticate(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = ctxutil.GetAuthUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "stale.token.value"})
	recorder := httptest.NewRecorder()
	public.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, claims)
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.AccessTokenCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)

	request = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer stale.token.value")
	recorder = httptest.NewRecorder()
	public.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireAuth(t *testing.T) {
	handler := middleware.Authenticate(verifier)(middleware.RequireAuth(ok))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer member-token")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestRequestID_GeneratesAndEchoes keeps a client supplied ID and creates one otherwise.
*/
func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = ctxutil.GetRequestID(r.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "abc", seen)
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "boom")
}

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 1, 2)(ok)

	codes := make([]int, 0, 3)
	for range 3 {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRealIP, "203.0.113.7")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type corsConfig struct{ dev bool }

func (c corsConfig) IsDevelopment() bool { return c.dev }
func (c corsConfig) AllowedOrigins() []string {
	return []string{"https://animeab.tk", "https://*.animeab.tk"}
}

func TestCORS_Origins(t *testing.T) {
	tests := []struct {
		name    string
		dev     bool
		origin  string
		allowed bool
	}{
		{"prod_root", false, "https://animeab.tk", true},
		{"prod_subdomain", false, "https://admin.animeab.tk", true},
		{"prod_foreign", false, "https://evil.example", false},
		{"dev_any", true, "http://localhost:5173", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(corsConfig{dev: tt.dev})(ok)
			request := httptest.NewRequest(http.MethodGet, "/anime/movies", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			got := recorder.Header().Get("Access-Control-Allow-Origin")
			if tt.allowed {
				assert.Equal(t, tt.origin, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXForwardedFor, "198.51.100.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.1", middleware.RealIP(request))

	request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))
}
