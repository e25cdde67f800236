// internal/domain/auth/dto.go
package auth

// SendOTPRequest asks for a login code for a phone number.
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// SendOTPResponse echoes the code back; SMS delivery is handled outside
// this service.
type SendOTPResponse struct {
	Message    string `json:"message"`
	OTP        string `json:"otp,omitempty"`
	ExpiresIn  string `json:"expires_in"`
	UserExists bool   `json:"user_exists"`
}

// VerifyOTPRequest exchanges a code for tokens. CustomerName and Email are
// required on an identity's first successful login.
type VerifyOTPRequest struct {
	PhoneNumber  string `json:"phone_number" binding:"required"`
	OTP          string `json:"otp" binding:"required"`
	CustomerName string `json:"customer_name,omitempty"`
	Email        string `json:"email,omitempty"`

	// Request metadata filled in by the handler, not the client body.
	Client DeviceInfo `json:"-"`
}

// LoginResult is returned on successful verification. The refresh token is
// transported separately as an HTTP-only cookie.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
	HasBasicInfo bool   `json:"hasBasicInfo"`
	Message      string `json:"message"`
}

// RefreshResult carries the rotated credentials.
type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

// CleanupResult reports how many expired revocation records were purged.
type CleanupResult struct {
	RemovedBlacklist int64 `json:"removedBlacklist"`
	RemovedSessions  int64 `json:"removedSessions"`
}
