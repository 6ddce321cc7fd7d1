// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// RevocationStore keeps the IDs of tokens that were signed out before they expired.
type RevocationStore interface {
	// Revoke records tokenID as signed out for ttl. A non-positive ttl is a no-op.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked reports whether tokenID has been signed out.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
