// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animeab/internal/auth"
	"github.com/taibuivan/animeab/internal/platform/apperr"
	"github.com/taibuivan/animeab/internal/platform/constants"
	"github.com/taibuivan/animeab/internal/platform/middleware"
	"github.com/taibuivan/animeab/internal/platform/sec"
)

const (
	adminEmail    = "admin@animeab.tk"
	adminPassword = "correct horse battery staple"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memoryRevocations is an in-process RevocationStore.
type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	failGet error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: make(map[string]time.Duration)}
}

func (store *memoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if ttl > 0 {
		store.revoked[tokenID] = ttl
	}
	return nil
}

func (store *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failGet != nil {
		return false, store.failGet
	}
	_, ok := store.revoked[tokenID]
	return ok, nil
}

func newService(t *testing.T) (*auth.Service, *memoryRevocations) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	hash, err := sec.HashPassword(adminPassword)
	require.NoError(t, err)

	revocations := newMemoryRevocations()
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, constants.AuthIssuer)
	credentials := auth.Credentials{Email: adminEmail, PasswordHash: hash}

	return auth.NewService(credentials, tokens, revocations, discardLogger), revocations
}

func requireUnauthorized(t *testing.T, err error) {
	t.Helper()
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got %v", err)
	assert.Equal(t, apperr.CodeUnauthorized, appError.Code)
}

// # Service

/*
TestLogin_Credentials only accepts the configured administrator.
*/
func TestLogin_Credentials(t *testing.T) {
	service, _ := newService(t)

	tests := []struct {
		name     string
		email    string
		password string
		ok       bool
	}{
		{"valid", adminEmail, adminPassword, true},
		{"email_case_and_space", "  Admin@AnimeAB.tk ", adminPassword, true},
		{"wrong_password", adminEmail, "guess", false},
		{"wrong_email", "someone@animeab.tk", adminPassword, false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := service.Login(context.Background(), auth.LoginInput{Email: tt.email, Password: tt.password})
			if !tt.ok {
				requireUnauthorized(t, err)
				assert.Nil(t, session)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, session.AccessToken)
			assert.Equal(t, string(sec.RoleAdmin), session.Role)
			assert.WithinDuration(t, time.Now().Add(constants.AccessTokenTTL), session.ExpiresAt, time.Minute)
		})
	}
}

/*
TestLogout_RevokesForRemainingLifetime puts the token ID on the list with a TTL
no longer than the token has left.
*/
func TestLogout_RevokesForRemainingLifetime(t *testing.T) {
	service, revocations := newService(t)
	ctx := context.Background()

	session, err := service.Login(ctx, auth.LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	claims, err := service.VerifyToken(ctx, session.AccessToken)
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, claims))

	ttl, ok := revocations.revoked[claims.ID]
	require.True(t, ok)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, constants.AccessTokenTTL)

	_, err = service.VerifyToken(ctx, session.AccessToken)
	requireUnauthorized(t, err)
}

func TestLogout_NilClaims(t *testing.T) {
	service, revocations := newService(t)
	require.NoError(t, service.Logout(context.Background(), nil))
	assert.Empty(t, revocations.revoked)
}

func TestVerifyToken_Garbage(t *testing.T) {
	service, _ := newService(t)
	_, err := service.VerifyToken(context.Background(), "not-a-jwt")
	requireUnauthorized(t, err)
}

/*
TestVerifyToken_StoreFailure refuses the token when the revocation list cannot be read.
*/
func TestVerifyToken_StoreFailure(t *testing.T) {
	service, revocations := newService(t)
	ctx := context.Background()

	session, err := service.Login(ctx, auth.LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	revocations.failGet = errors.New("connection refused")
	_, err = service.VerifyToken(ctx, session.AccessToken)
	assert.Error(t, err)
}

// # HTTP

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	service, _ := newService(t)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(service))
	router.Mount("/auth", auth.NewHandler(service, true).Routes())
	router.With(middleware.RequireRole(sec.RoleAdmin)).Get("/private", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	return router
}

func serve(router http.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func loginRequest(email, password string) *http.Request {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	return httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
}

// sessionCookie returns the last session cookie set, the one a browser keeps.
func sessionCookie(recorder *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.AccessTokenCookieName {
			found = cookie
		}
	}
	return found
}

/*
TestHTTP_SessionLifecycle signs in, uses the cookie, signs out and checks the
cookie no longer works.
*/
func TestHTTP_SessionLifecycle(t *testing.T) {
	router := newRouter(t)

	login := serve(router, loginRequest(adminEmail, adminPassword))
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())

	cookie := sessionCookie(login)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	var envelope struct {
		Data auth.Session `json:"data"`
	}
	require.NoError(t, json.NewDecoder(login.Body).Decode(&envelope))
	assert.Equal(t, cookie.Value, envelope.Data.AccessToken)

	private := httptest.NewRequest(http.MethodGet, "/private", nil)
	private.AddCookie(cookie)
	assert.Equal(t, http.StatusOK, serve(router, private).Code)

	logout := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logout.Header.Set(constants.HeaderAuthorization, "Bearer "+envelope.Data.AccessToken)
	logoutRecorder := serve(router, logout)
	require.Equal(t, http.StatusNoContent, logoutRecorder.Code)

	cleared := sessionCookie(logoutRecorder)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	private = httptest.NewRequest(http.MethodGet, "/private", nil)
	private.AddCookie(cookie)
	assert.Equal(t, http.StatusUnauthorized, serve(router, private).Code)
}

func TestHTTP_LoginFailures(t *testing.T) {
	router := newRouter(t)

	assert.Equal(t, http.StatusUnauthorized, serve(router, loginRequest(adminEmail, "nope")).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, loginRequest("", "")).Code)

	garbage := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{"))
	assert.Equal(t, http.StatusBadRequest, serve(router, garbage).Code)
}

/*
TestHTTP_LoginWithStaleCookie signs in again while the browser still sends a
revoked session cookie.
*/
func TestHTTP_LoginWithStaleCookie(t *testing.T) {
	router := newRouter(t)

	first := serve(router, loginRequest(adminEmail, adminPassword))
	require.Equal(t, http.StatusOK, first.Code)
	stale := sessionCookie(first)
	require.NotNil(t, stale)

	logout := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logout.AddCookie(stale)
	require.Equal(t, http.StatusNoContent, serve(router, logout).Code)

	again := loginRequest(adminEmail, adminPassword)
	again.AddCookie(stale)
	recorder := serve(router, again)

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	fresh := sessionCookie(recorder)
	require.NotNil(t, fresh)
	assert.NotEqual(t, stale.Value, fresh.Value)
}

func TestHTTP_LogoutRequiresSession(t *testing.T) {
	router := newRouter(t)

	recorder := serve(router, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
