// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animeab/internal/api"
	"github.com/taibuivan/animeab/internal/auth"
	"github.com/taibuivan/animeab/internal/catalog/anime"
	"github.com/taibuivan/animeab/internal/platform/constants"
	"github.com/taibuivan/animeab/internal/platform/sec"
	"github.com/taibuivan/animeab/internal/platform/staging"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type serverConfig struct{}

func (serverConfig) IsDevelopment() bool      { return false }
func (serverConfig) AllowedOrigins() []string { return []string{"https://animeab.tk"} }
func (serverConfig) Port() string             { return "0" }

type noRevocations struct{}

func (noRevocations) Revoke(context.Context, string, time.Duration) error { return nil }
func (noRevocations) IsRevoked(context.Context, string) (bool, error)     { return false, nil }

type fixture struct {
	handler http.Handler
	tokens  *sec.TokenService
}

func newFixture(t *testing.T, deps api.HealthDependencies) *fixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, constants.AuthIssuer)

	hash, err := sec.HashPassword("secret")
	require.NoError(t, err)
	authService := auth.NewService(auth.Credentials{Email: "admin@animeab.tk", PasswordHash: hash}, tokens, noRevocations{}, discardLogger)

	area, err := staging.NewArea(afero.NewMemMapFs(), "/stage")
	require.NoError(t, err)
	gateway := anime.NewMemoryGateway("/images/")
	service := anime.NewService(gateway, area, nil, "https://animeab.tk/", discardLogger)

	liveness, readiness := api.NewHealthHandlers(deps, discardLogger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(ctx, serverConfig{}, discardLogger, authService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, true),
		Anime:     anime.NewHandler(service, constants.DefaultMaxUploadBytes),
		Images:    anime.NewImageHandler(gateway),
	})

	return &fixture{handler: server.Handler(), tokens: tokens}
}

func (f *fixture) get(path, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, request)
	return recorder
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t, api.HealthDependencies{})

	recorder := f.get("/health", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, recorder.Body.String())
	assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))
}

/*
TestServer_Readiness reports each dependency and degrades to 503 when one fails.
*/
func TestServer_Readiness(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	broken := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name   string
		deps   api.HealthDependencies
		status int
		state  string
	}{
		{"all_ready", api.HealthDependencies{CheckDatabase: healthy, CheckCache: healthy}, http.StatusOK, "ready"},
		{"cache_down", api.HealthDependencies{CheckDatabase: healthy, CheckCache: broken}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := newFixture(t, tt.deps).get("/ready", "")
			assert.Equal(t, tt.status, recorder.Code)

			var envelope struct {
				Data struct {
					Status string `json:"status"`
					Checks []struct {
						Name string `json:"name"`
						OK   bool   `json:"ok"`
					} `json:"checks"`
				} `json:"data"`
			}
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
			assert.Equal(t, tt.state, envelope.Data.Status)
			assert.Len(t, envelope.Data.Checks, 2)
		})
	}
}

/*
TestServer_CatalogueRequiresAdmin walks the whole chain: the token is verified
globally and the catalogue group checks the role.
*/
func TestServer_CatalogueRequiresAdmin(t *testing.T) {
	f := newFixture(t, api.HealthDependencies{})

	member, _, err := f.tokens.GenerateAccessToken("u1", "viewer", string(sec.RoleMember), time.Hour)
	require.NoError(t, err)
	admin, _, err := f.tokens.GenerateAccessToken("admin", "admin", string(sec.RoleAdmin), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, f.get("/anime/movies", "").Code)
	assert.Equal(t, http.StatusForbidden, f.get("/anime/movies", member).Code)
	assert.Equal(t, http.StatusOK, f.get("/anime/movies", admin).Code)
	assert.Equal(t, http.StatusUnauthorized, f.get("/anime/movies", "forged").Code)
}

func TestServer_StaleCookieOnPublicRoute(t *testing.T) {
	f := newFixture(t, api.HealthDependencies{})

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "stale.token.value"})
	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestServer_ImagesArePublic(t *testing.T) {
	f := newFixture(t, api.HealthDependencies{})

	assert.Equal(t, http.StatusNotFound, f.get("/images/naruto/image/naruto-cover.png", "").Code)
}
