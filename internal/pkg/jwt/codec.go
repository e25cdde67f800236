// internal/pkg/jwt/codec.go
package jwt

import (
	"errors"
	"fmt"
	"time"

	xerrors "portal-auth-service/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Config struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Codec issues and verifies signed access/refresh tokens. Access and
// refresh tokens use independent secrets so leaking one class does not
// compromise the other.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewCodec(cfg Config) *Codec {
	return &Codec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

type subject struct {
	IdentityID   int64
	PhoneNumber  string
	CustomerName string
	Email        string
}

// IssueAccess mints a signed access token and returns it with its JTI.
func (c *Codec) IssueAccess(identityID int64, phone, name, email string) (string, string, error) {
	return c.issue(subject{identityID, phone, name, email}, TypeAccess, c.accessSecret, c.accessTTL)
}

// IssueRefresh mints a signed refresh token. Refresh claims carry only the
// subject id and phone; they exist to obtain new access tokens.
func (c *Codec) IssueRefresh(identityID int64, phone string) (string, string, error) {
	return c.issue(subject{IdentityID: identityID, PhoneNumber: phone}, TypeRefresh, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) issue(sub subject, tokenType string, secret []byte, ttl time.Duration) (string, string, error) {
	now := time.Now().UTC()
	jti := ulid.Make().String()

	claims := &Claims{
		IdentityID:   sub.IdentityID,
		PhoneNumber:  sub.PhoneNumber,
		CustomerName: sub.CustomerName,
		Email:        sub.Email,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   fmt.Sprintf("%d", sub.IdentityID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, jti, nil
}

// Verify validates signature, expiry and type discriminator, returning the
// claims. Parse failures map to the token error taxonomy, never a panic.
func (c *Codec) Verify(tokenString, expectedType string) (*Claims, error) {
	secret := c.accessSecret
	if expectedType == TypeRefresh {
		secret = c.refreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, xerrors.ErrTokenExpired
		}
		return nil, xerrors.ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, xerrors.ErrTokenMalformed
	}

	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil, xerrors.ErrTokenMalformed
	}

	if claims.TokenType != expectedType {
		return nil, xerrors.ErrWrongTokenType
	}

	return claims, nil
}

// VerifyAccess verifies that the token is a valid access token.
func (c *Codec) VerifyAccess(tokenString string) (*Claims, error) {
	return c.Verify(tokenString, TypeAccess)
}

// VerifyRefresh verifies that the token is a valid refresh token.
func (c *Codec) VerifyRefresh(tokenString string) (*Claims, error) {
	return c.Verify(tokenString, TypeRefresh)
}

// ExtractJTI decodes without verifying and returns the token id. Used for
// blacklist bookkeeping where the token may already be near expiry.
func ExtractJTI(tokenString string) (string, bool) {
	claims := decodeUnverified(tokenString)
	if claims == nil || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}

// ExpiryOf decodes without verifying and returns the token expiry.
func ExpiryOf(tokenString string) (time.Time, bool) {
	claims := decodeUnverified(tokenString)
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// SubjectOf decodes without verifying and returns the identity id.
func SubjectOf(tokenString string) (int64, bool) {
	claims := decodeUnverified(tokenString)
	if claims == nil || claims.IdentityID == 0 {
		return 0, false
	}
	return claims.IdentityID, true
}

func decodeUnverified(tokenString string) *Claims {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
