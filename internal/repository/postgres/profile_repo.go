// internal/repository/postgres/profile_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"portal-auth-service/internal/domain/customer"
	xerrors "portal-auth-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `
	id, identity_id, full_name, email, alt_email, mobile_phone, home_phone,
	gender, marital_status, date_of_birth, national_id_no,
	address, city, country, last_activity_date, created_at, updated_at
`

func scanProfile(row pgx.Row) (*customer.Profile, error) {
	var p customer.Profile
	err := row.Scan(
		&p.ID, &p.IdentityID, &p.FullName, &p.Email, &p.AltEmail,
		&p.MobilePhone, &p.HomePhone, &p.Gender, &p.MaritalStatus,
		&p.DateOfBirth, &p.NationalIDNo,
		&p.Address, &p.City, &p.Country,
		&p.LastActivityDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return &p, nil
}

// Create inserts the profile row that accompanies a new identity.
func (r *ProfileRepository) Create(ctx context.Context, profile *customer.Profile) error {
	query := `
		INSERT INTO profiles (identity_id, full_name, email, mobile_phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		profile.IdentityID, profile.FullName, profile.Email, profile.MobilePhone,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByIdentityID retrieves the profile linked to an identity.
func (r *ProfileRepository) GetByIdentityID(ctx context.Context, identityID int64) (*customer.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE identity_id = $1
	`
	return scanProfile(r.db.QueryRow(ctx, query, identityID))
}

// Patch applies only the non-nil fields of the patch and returns the
// updated row. COALESCE keeps untouched columns as they were.
func (r *ProfileRepository) Patch(ctx context.Context, identityID int64, patch *customer.ProfilePatch) (*customer.Profile, error) {
	query := `
		UPDATE profiles
		SET full_name       = COALESCE($2, full_name),
		    email           = COALESCE($3, email),
		    alt_email       = COALESCE($4, alt_email),
		    mobile_phone    = COALESCE($5, mobile_phone),
		    home_phone      = COALESCE($6, home_phone),
		    gender          = COALESCE($7, gender),
		    marital_status  = COALESCE($8, marital_status),
		    date_of_birth   = COALESCE($9, date_of_birth),
		    national_id_no  = COALESCE($10, national_id_no),
		    address         = COALESCE($11, address),
		    city            = COALESCE($12, city),
		    country         = COALESCE($13, country),
		    last_activity_date = NOW(),
		    updated_at      = NOW()
		WHERE identity_id = $1
		RETURNING ` + profileColumns + `
	`

	return scanProfile(r.db.QueryRow(ctx, query, identityID,
		patch.FullName, patch.Email, patch.AltEmail,
		patch.MobilePhone, patch.HomePhone, patch.Gender, patch.MaritalStatus,
		patch.DateOfBirth, patch.NationalIDNo,
		patch.Address, patch.City, patch.Country,
	))
}

// TouchActivity stamps last_activity_date on the profile.
func (r *ProfileRepository) TouchActivity(ctx context.Context, identityID int64) error {
	query := `
		UPDATE profiles
		SET last_activity_date = NOW(), updated_at = NOW()
		WHERE identity_id = $1
	`

	if _, err := r.db.Exec(ctx, query, identityID); err != nil {
		return fmt.Errorf("failed to touch profile activity: %w", err)
	}
	return nil
}
