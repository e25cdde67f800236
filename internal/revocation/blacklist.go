// internal/revocation/blacklist.go
package revocation

import (
	"context"
	"time"
)

// Blacklist tracks access tokens invalidated before their natural expiry,
// keyed by JTI. An entry only counts as revoked while its expiry is in the
// future; after that the signature check rejects the token anyway and the
// entry is safe to purge. Purge is best-effort compaction, not a
// correctness requirement.
type Blacklist interface {
	// Revoke records a token as unusable until expiresAt.
	Revoke(ctx context.Context, jti string, identityID int64, expiresAt time.Time, reason string) error
	// IsRevoked reports whether a non-expired entry exists for the JTI.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// PurgeExpired removes entries past their expiry and returns the count.
	PurgeExpired(ctx context.Context) (int64, error)
}
