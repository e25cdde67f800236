// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators carried in the claims.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims represents the JWT claims
type Claims struct {
	IdentityID   int64  `json:"identity_id"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	Email        string `json:"email,omitempty"`
	TokenType    string `json:"type"` // access or refresh
	jwt.RegisteredClaims
}

// IsAccess reports whether the claims describe an access token.
func (c *Claims) IsAccess() bool {
	return c.TokenType == TypeAccess
}

// IsRefresh reports whether the claims describe a refresh token.
func (c *Claims) IsRefresh() bool {
	return c.TokenType == TypeRefresh
}
