// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/animeab/internal/platform/apperr"
	"github.com/taibuivan/animeab/internal/platform/constants"
	"github.com/taibuivan/animeab/internal/platform/sec"
)

// TokenProvider issues and checks signed session tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, *sec.AuthClaims, error)
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Credentials identify the configured administrator.
type Credentials struct {
	Email        string
	PasswordHash string
}

// Service implements the administrator session use cases.
type Service struct {
	credentials Credentials
	tokens      TokenProvider
	revocations RevocationStore
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a [Service] with its dependencies.
func NewService(credentials Credentials, tokens TokenProvider, revocations RevocationStore, logger *slog.Logger) *Service {
	return &Service{
		credentials: credentials,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
		now:         time.Now,
	}
}

// LoginInput holds the credentials of a sign-in attempt.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
}

/*
Login checks the credentials against the configured administrator and issues a session.

Returns:
  - *Session: the signed token and its expiry
  - error: apperr.Unauthorized when either the email or the password is wrong
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	expected := strings.ToLower(service.credentials.Email)

	// The hash check always runs so a wrong email costs the same as a wrong password.
	emailMatches := subtle.ConstantTimeCompare([]byte(email), []byte(expected)) == 1
	passwordMatches := sec.CheckPasswordHash(input.Password, service.credentials.PasswordHash)

	if !emailMatches || !passwordMatches {
		service.logger.WarnContext(ctx, "admin_login_failed", slog.String("ip", input.IPAddress))
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	token, claims, err := service.tokens.GenerateAccessToken(expected, expected, string(sec.RoleAdmin), constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "admin_login", slog.String("ip", input.IPAddress), slog.String("jti", claims.ID))

	return &Session{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		Email:       expected,
		Role:        claims.Role,
	}, nil
}

// Logout revokes the session described by claims for the rest of its lifetime.
func (service *Service) Logout(ctx context.Context, claims *sec.AuthClaims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}

	var remaining time.Duration
	if claims.ExpiresAt != nil {
		remaining = claims.ExpiresAt.Sub(service.now())
	}

	if err := service.revocations.Revoke(ctx, claims.ID, remaining); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "admin_logout", slog.String("jti", claims.ID))
	return nil
}

/*
VerifyToken checks the signature and validity window, then the revocation list.

It satisfies middleware.TokenVerifier.
*/
func (service *Service) VerifyToken(ctx context.Context, tokenString string) (*sec.AuthClaims, error) {
	claims, err := service.tokens.VerifyToken(tokenString)
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidSession)
	}

	revoked, err := service.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_revocation_check_failed: %w", err)
	}
	if revoked {
		return nil, apperr.Unauthorized(MsgSessionRevoked)
	}

	return claims, nil
}
