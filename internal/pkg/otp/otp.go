// internal/pkg/otp/otp.go
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Digits is the fixed OTP width. Codes are drawn uniformly from
// [100000, 999999] so every code has the full six digits.
const Digits = 6

const (
	rangeLow  = 100000
	rangeSpan = 900000
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 10 * time.Minute

// Generate returns a six-digit numeric code from a cryptographic random
// source.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(rangeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+rangeLow), nil
}

// Valid reports whether s looks like a code this package generated: exactly
// six ASCII digits.
func Valid(s string) bool {
	if len(s) != Digits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
