// internal/domain/customer/dto.go
package customer

import "time"

// ProfilePatch is a partial update: only non-nil fields are applied.
type ProfilePatch struct {
	FullName      *string    `json:"full_name,omitempty"`
	Email         *string    `json:"email,omitempty"`
	AltEmail      *string    `json:"alt_email,omitempty"`
	MobilePhone   *string    `json:"mobile_phone,omitempty"`
	HomePhone     *string    `json:"home_phone,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	MaritalStatus *string    `json:"marital_status,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	NationalIDNo  *string    `json:"national_id_no,omitempty"`
	Address       *string    `json:"address,omitempty"`
	City          *string    `json:"city,omitempty"`
	Country       *string    `json:"country,omitempty"`
}

// IsEmpty reports whether the patch contains no fields to apply.
func (p *ProfilePatch) IsEmpty() bool {
	return p.FullName == nil && p.Email == nil && p.AltEmail == nil &&
		p.MobilePhone == nil && p.HomePhone == nil && p.Gender == nil &&
		p.MaritalStatus == nil && p.DateOfBirth == nil && p.NationalIDNo == nil &&
		p.Address == nil && p.City == nil && p.Country == nil
}
