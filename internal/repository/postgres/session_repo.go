// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal-auth-service/internal/domain/auth"
	xerrors "portal-auth-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, identity_id, refresh_token_hash, expires_at, is_active,
	device_info, ip_address, user_agent, last_used_at,
	revoked_at, revoked_reason, created_at, updated_at
`

func scanSession(row pgx.Row) (*auth.Session, error) {
	var s auth.Session
	err := row.Scan(
		&s.ID, &s.IdentityID, &s.RefreshTokenHash, &s.ExpiresAt, &s.IsActive,
		&s.DeviceInfo, &s.IPAddress, &s.UserAgent, &s.LastUsedAt,
		&s.RevokedAt, &s.RevokedReason, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return &s, nil
}

// Create inserts a session row for a fresh login.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	query := `
		INSERT INTO session_logs (identity_id, refresh_token_hash, expires_at,
		                          is_active, device_info, ip_address, user_agent)
		VALUES ($1, $2, $3, TRUE, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		session.IdentityID, session.RefreshTokenHash, session.ExpiresAt,
		session.DeviceInfo, session.IPAddress, session.UserAgent,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	session.IsActive = true
	return nil
}

// FindActiveByTokenHash retrieves a live session carrying the hash. The
// identity filter stops one user's refresh token from ever resolving
// against another user's session.
func (r *SessionRepository) FindActiveByTokenHash(ctx context.Context, tokenHash string, identityID int64) (*auth.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM session_logs
		WHERE refresh_token_hash = $1 AND identity_id = $2
		  AND is_active AND expires_at > NOW()
	`
	return scanSession(r.db.QueryRow(ctx, query, tokenHash, identityID))
}

// Rotate replaces the stored hash only while oldHash is still the live
// one. A replayed refresh token finds the hash already swapped, affects
// zero rows and loses.
func (r *SessionRepository) Rotate(ctx context.Context, sessionID int64, oldHash, newHash string, newExpiry time.Time) (bool, error) {
	query := `
		UPDATE session_logs
		SET refresh_token_hash = $3, expires_at = $4,
		    last_used_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND refresh_token_hash = $2
		  AND is_active AND expires_at > NOW()
	`

	tag, err := r.db.Exec(ctx, query, sessionID, oldHash, newHash, newExpiry)
	if err != nil {
		return false, fmt.Errorf("failed to rotate session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Revoke deactivates a single session. Revocation is terminal; rotation
// and refresh both refuse inactive rows.
func (r *SessionRepository) Revoke(ctx context.Context, sessionID int64, reason string) error {
	query := `
		UPDATE session_logs
		SET is_active = FALSE, revoked_at = NOW(), revoked_reason = $2,
		    updated_at = NOW()
		WHERE id = $1 AND is_active
	`

	if _, err := r.db.Exec(ctx, query, sessionID, reason); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAllForIdentity deactivates every live session the identity holds
// and returns how many were hit.
func (r *SessionRepository) RevokeAllForIdentity(ctx context.Context, identityID int64, reason string) (int64, error) {
	query := `
		UPDATE session_logs
		SET is_active = FALSE, revoked_at = NOW(), revoked_reason = $2,
		    updated_at = NOW()
		WHERE identity_id = $1 AND is_active
	`

	tag, err := r.db.Exec(ctx, query, identityID, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeExpired deletes rows that are both inactive or past expiry and old
// enough that nothing references them anymore.
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM session_logs
		WHERE expires_at < NOW() OR (NOT is_active AND revoked_at < NOW() - INTERVAL '30 days')
	`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
