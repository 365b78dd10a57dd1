// Package tokenstore keeps the ids (jti) of access tokens that were revoked
// before their natural expiry.
package tokenstore

import (
	"context"
	"time"
)

type RevocationStore interface {
	// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op
	// since the token has already expired.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
