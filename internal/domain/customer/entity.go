// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"
)

// Profile is the customer aggregate linked 1:1 to an auth identity. It is
// created alongside a brand-new identity on first OTP request and mutated
// only through partial updates.
type Profile struct {
	ID               int64          `json:"id" db:"id"`
	IdentityID       int64          `json:"identity_id" db:"identity_id"`
	FullName         sql.NullString `json:"full_name" db:"full_name"`
	Email            sql.NullString `json:"email" db:"email"`
	AltEmail         sql.NullString `json:"alt_email" db:"alt_email"`
	MobilePhone      sql.NullString `json:"mobile_phone" db:"mobile_phone"`
	HomePhone        sql.NullString `json:"home_phone" db:"home_phone"`
	Gender           sql.NullString `json:"gender" db:"gender"`
	MaritalStatus    sql.NullString `json:"marital_status" db:"marital_status"`
	DateOfBirth      sql.NullTime   `json:"date_of_birth" db:"date_of_birth"`
	NationalIDNo     sql.NullString `json:"national_id_no" db:"national_id_no"`
	Address          sql.NullString `json:"address" db:"address"`
	City             sql.NullString `json:"city" db:"city"`
	Country          sql.NullString `json:"country" db:"country"`
	LastActivityDate sql.NullTime   `json:"last_activity_date" db:"last_activity_date"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// HasBasicInfo reports whether the profile carries the minimum data the
// login flow asks for (name and email both present).
func (p *Profile) HasBasicInfo() bool {
	return p != nil && p.FullName.Valid && p.FullName.String != "" &&
		p.Email.Valid && p.Email.String != ""
}
