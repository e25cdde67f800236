// internal/repository/postgres/identity_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal-auth-service/internal/domain/auth"
	xerrors "portal-auth-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IdentityRepository struct {
	db *pgxpool.Pool
}

func NewIdentityRepository(db *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{db: db}
}

const identityColumns = `
	id, phone_number, customer_name, email, state, login_disabled,
	login_count, failed_login_count, failed_login_total,
	temp_pwd_hash, temp_pwd_issued, temp_pwd_expiry,
	last_login, created_at, updated_at
`

func scanIdentity(row pgx.Row) (*auth.Identity, error) {
	var identity auth.Identity
	err := row.Scan(
		&identity.ID, &identity.PhoneNumber, &identity.CustomerName, &identity.Email,
		&identity.State, &identity.LoginDisabled,
		&identity.LoginCount, &identity.FailedLoginCount, &identity.FailedLoginTotal,
		&identity.TempPwdHash, &identity.TempPwdIssued, &identity.TempPwdExpiry,
		&identity.LastLogin, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan identity: %w", err)
	}
	return &identity, nil
}

// FindByPhone retrieves an identity by phone number.
func (r *IdentityRepository) FindByPhone(ctx context.Context, phone string) (*auth.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE phone_number = $1
	`
	return scanIdentity(r.db.QueryRow(ctx, query, phone))
}

// FindByID retrieves an identity by ID.
func (r *IdentityRepository) FindByID(ctx context.Context, id int64) (*auth.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE id = $1
	`
	return scanIdentity(r.db.QueryRow(ctx, query, id))
}

// Create inserts a new identity and fills in the generated fields. A
// concurrent insert for the same phone number surfaces as
// ErrDuplicateEntry so the caller can fall back to the existing row.
func (r *IdentityRepository) Create(ctx context.Context, identity *auth.Identity) error {
	query := `
		INSERT INTO identities (phone_number, customer_name, email, state)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		identity.PhoneNumber, identity.CustomerName, identity.Email, identity.State,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return xerrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

// SetOTP stores a freshly issued code hash, replacing whatever code was
// there before. The previous code stops working the moment this commits.
func (r *IdentityRepository) SetOTP(ctx context.Context, id int64, codeHash string, issuedAt, expiresAt time.Time) error {
	query := `
		UPDATE identities
		SET temp_pwd_hash = $2, temp_pwd_issued = $3, temp_pwd_expiry = $4,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, codeHash, issuedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrIdentityNotFound
	}
	return nil
}

// IncrementFailedLogin bumps both the per-streak and lifetime failure
// counters after a wrong code.
func (r *IdentityRepository) IncrementFailedLogin(ctx context.Context, id int64) error {
	query := `
		UPDATE identities
		SET failed_login_count = failed_login_count + 1,
		    failed_login_total = failed_login_total + 1,
		    updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment failed login: %w", err)
	}
	return nil
}

// UpdateBasicInfo records the name and email captured on first login.
func (r *IdentityRepository) UpdateBasicInfo(ctx context.Context, id int64, customerName, email string) error {
	query := `
		UPDATE identities
		SET customer_name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, customerName, email)
	if err != nil {
		return fmt.Errorf("failed to update basic info: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrIdentityNotFound
	}
	return nil
}
