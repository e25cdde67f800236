// internal/repository/postgres/login_repo.go
package postgres

import (
	"context"
	"fmt"

	"portal-auth-service/internal/domain/auth"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginRepository runs the verify-login step in one transaction. The OTP
// consume and the session insert commit together, so a failed or timed-out
// session write rolls the consume back and the code stays usable.
type LoginRepository struct {
	db *pgxpool.Pool
}

func NewLoginRepository(db *pgxpool.Pool) *LoginRepository {
	return &LoginRepository{db: db}
}

// ConsumeOTPAndCreateSession clears the stored code and inserts the
// session row atomically. The conditional WHERE clause on the consume
// makes it exclusive: of any number of concurrent calls with the same
// code, exactly one sees a row affected and proceeds to the insert.
func (r *LoginRepository) ConsumeOTPAndCreateSession(ctx context.Context, identityID int64, codeHash string, session *auth.Session) (bool, error) {
	consumed := false

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		consume := `
			UPDATE identities
			SET temp_pwd_hash = NULL, temp_pwd_issued = NULL, temp_pwd_expiry = NULL,
			    login_count = login_count + 1, failed_login_count = 0,
			    last_login = NOW(), updated_at = NOW()
			WHERE id = $1 AND temp_pwd_hash = $2 AND temp_pwd_expiry > NOW()
		`

		tag, err := tx.Exec(ctx, consume, identityID, codeHash)
		if err != nil {
			return fmt.Errorf("failed to consume otp: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		insert := `
			INSERT INTO session_logs (identity_id, refresh_token_hash, expires_at,
			                          is_active, device_info, ip_address, user_agent)
			VALUES ($1, $2, $3, TRUE, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`

		err = tx.QueryRow(ctx, insert,
			session.IdentityID, session.RefreshTokenHash, session.ExpiresAt,
			session.DeviceInfo, session.IPAddress, session.UserAgent,
		).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		consumed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if consumed {
		session.IsActive = true
	}
	return consumed, nil
}
