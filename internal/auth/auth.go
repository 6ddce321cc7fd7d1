// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth signs the administrator in and out.

There is a single administrator whose email and bcrypt password hash come from
configuration. A successful login issues an RS256 session token; logout puts the
token ID on a revocation list that lives until the token would have expired.

Flow:

	POST /auth/login  -> verify credentials -> issue token -> set cookie
	POST /auth/logout -> revoke token ID     -> clear cookie
*/
package auth

import "time"

// # Messages

const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgSessionRevoked     = "Session has been signed out"
	MsgInvalidSession     = "Invalid or expired session"
)

// # Field Names

const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// revokedKeyPrefix namespaces revoked token IDs in the key-value store.
const revokedKeyPrefix = "auth:revoked:"

// Session is an issued administrator session.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}
