// internal/repository/postgres/blacklist_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BlacklistRepository is the durable revocation store. It satisfies
// revocation.Blacklist so deployments without Redis can still survive a
// restart without forgetting revoked tokens.
type BlacklistRepository struct {
	db *pgxpool.Pool
}

func NewBlacklistRepository(db *pgxpool.Pool) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

func (r *BlacklistRepository) Revoke(ctx context.Context, jti string, identityID int64, expiresAt time.Time, reason string) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}

	query := `
		INSERT INTO token_blacklist (jti, identity_id, expires_at, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, jti, identityID, expiresAt, reason); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *BlacklistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM token_blacklist
			WHERE jti = $1 AND expires_at > NOW()
		)
	`

	var revoked bool
	if err := r.db.QueryRow(ctx, query, jti).Scan(&revoked); err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return revoked, nil
}

func (r *BlacklistRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM token_blacklist WHERE expires_at <= NOW()`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to purge blacklist: %w", err)
	}
	return tag.RowsAffected(), nil
}
