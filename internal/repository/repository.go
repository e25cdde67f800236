// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"portal-auth-service/internal/domain/auth"
	"portal-auth-service/internal/domain/customer"
)

// IdentityRepo persists login records.
type IdentityRepo interface {
	FindByPhone(ctx context.Context, phone string) (*auth.Identity, error)
	FindByID(ctx context.Context, id int64) (*auth.Identity, error)
	Create(ctx context.Context, identity *auth.Identity) error

	// SetOTP overwrites any prior unconsumed code on the identity.
	SetOTP(ctx context.Context, id int64, codeHash string, issuedAt, expiresAt time.Time) error

	IncrementFailedLogin(ctx context.Context, id int64) error
	UpdateBasicInfo(ctx context.Context, id int64, customerName, email string) error
}

// LoginRepo executes the verify-login step: consuming the code and
// recording the refresh session are one atomic unit, so a failed session
// write can never leave the code burned with no tokens issued.
type LoginRepo interface {
	// ConsumeOTPAndCreateSession clears the stored code, bumps the login
	// counters and inserts the session row in a single transaction. The
	// consume is conditional on the stored hash still matching and being
	// unexpired; of any number of concurrent calls with the same code,
	// exactly one returns true.
	ConsumeOTPAndCreateSession(ctx context.Context, identityID int64, codeHash string, session *auth.Session) (bool, error)
}

// ProfileRepo persists the customer aggregate linked to an identity.
type ProfileRepo interface {
	Create(ctx context.Context, profile *customer.Profile) error
	GetByIdentityID(ctx context.Context, identityID int64) (*customer.Profile, error)
	Patch(ctx context.Context, identityID int64, patch *customer.ProfilePatch) (*customer.Profile, error)
	TouchActivity(ctx context.Context, identityID int64) error
}

// SessionRepo persists refresh-token sessions, one row per device/login.
type SessionRepo interface {
	Create(ctx context.Context, session *auth.Session) error

	// FindActiveByTokenHash returns the session iff it is active, unexpired
	// and owned by identityID.
	FindActiveByTokenHash(ctx context.Context, tokenHash string, identityID int64) (*auth.Session, error)

	// Rotate swaps the stored refresh token hash under a conditional update
	// so two concurrent rotations of one token cannot both succeed. Returns
	// false when the old hash is no longer the live one.
	Rotate(ctx context.Context, sessionID int64, oldHash, newHash string, newExpiry time.Time) (bool, error)

	Revoke(ctx context.Context, sessionID int64, reason string) error
	RevokeAllForIdentity(ctx context.Context, identityID int64, reason string) (int64, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
