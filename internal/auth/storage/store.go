// Package storage holds revoked JWT identifiers until the tokens they name
// would have expired anyway.
package storage

import (
	"context"
	"time"
)

// Store defines the interface for the revoked-token denylist
type Store interface {
	// Revoke records a token id for ttl; entries past their ttl are forgotten
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether a token id is currently on the denylist
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Close releases the backing resources
	Close() error
}
