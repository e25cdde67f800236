// internal/domain/auth/entity.go
package auth

import (
	"database/sql"
	"time"
)

// Identity state values
const (
	StateActive   = "active"
	StateBlocked  = "blocked"
	StateInactive = "inactive"
)

// Identity is the login record keyed by phone number. At most one active
// OTP exists per identity; a new send overwrites the previous one.
type Identity struct {
	ID               int64          `json:"id" db:"id"`
	PhoneNumber      string         `json:"phone_number" db:"phone_number"`
	CustomerName     sql.NullString `json:"customer_name" db:"customer_name"`
	Email            sql.NullString `json:"email" db:"email"`
	State            string         `json:"state" db:"state"` // active, blocked, inactive
	LoginDisabled    bool           `json:"login_disabled" db:"login_disabled"`
	LoginCount       int            `json:"login_count" db:"login_count"`
	FailedLoginCount int            `json:"-" db:"failed_login_count"`
	FailedLoginTotal int            `json:"-" db:"failed_login_total"`
	TempPwdHash      sql.NullString `json:"-" db:"temp_pwd_hash"`
	TempPwdIssued    sql.NullTime   `json:"-" db:"temp_pwd_issued"`
	TempPwdExpiry    sql.NullTime   `json:"-" db:"temp_pwd_expiry"`
	LastLogin        sql.NullTime   `json:"last_login" db:"last_login"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// Session is one row per device/login holding the current refresh token
// lineage. Active sessions carry exactly one live refresh token hash;
// revocation is terminal.
type Session struct {
	ID               int64          `json:"id" db:"id"`
	IdentityID       int64          `json:"identity_id" db:"identity_id"`
	RefreshTokenHash string         `json:"-" db:"refresh_token_hash"`
	ExpiresAt        time.Time      `json:"expires_at" db:"expires_at"`
	IsActive         bool           `json:"is_active" db:"is_active"`
	DeviceInfo       sql.NullString `json:"device_info" db:"device_info"`
	IPAddress        sql.NullString `json:"ip_address" db:"ip_address"`
	UserAgent        sql.NullString `json:"user_agent" db:"user_agent"`
	LastUsedAt       sql.NullTime   `json:"last_used_at" db:"last_used_at"`
	RevokedAt        sql.NullTime   `json:"revoked_at" db:"revoked_at"`
	RevokedReason    sql.NullString `json:"revoked_reason" db:"revoked_reason"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// BlacklistEntry records an access token invalidated before its natural
// expiry. Entries past ExpiresAt are ignored by lookups and purged by the
// cleanup job.
type BlacklistEntry struct {
	ID            int64     `json:"id" db:"id"`
	JTI           string    `json:"jti" db:"jti"`
	IdentityID    int64     `json:"identity_id" db:"identity_id"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	Reason        string    `json:"reason" db:"reason"`
	BlacklistedAt time.Time `json:"blacklisted_at" db:"blacklisted_at"`
}

// DeviceInfo captures request metadata recorded on session creation.
type DeviceInfo struct {
	Device    string `json:"device,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}
