// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxSendsPerWindow    = 3
	sendWindow           = 10 * time.Minute
	maxVerifiesPerWindow = 5
	verifyWindow         = 10 * time.Minute
)

// Limiter throttles OTP traffic per phone number using Redis counters.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// AllowSend checks whether another OTP may be issued for the phone number.
// Up to 3 sends per 10 minutes.
func (l *Limiter) AllowSend(ctx context.Context, phone string) (bool, error) {
	return l.allow(ctx, fmt.Sprintf("ratelimit:otp_send:%s", phone), maxSendsPerWindow, sendWindow)
}

// AllowVerify checks whether another verification attempt is allowed for
// the phone number. Up to 5 attempts per 10 minutes.
func (l *Limiter) AllowVerify(ctx context.Context, phone string) (bool, error) {
	return l.allow(ctx, fmt.Sprintf("ratelimit:otp_verify:%s", phone), maxVerifiesPerWindow, verifyWindow)
}

// ResetVerify clears the verification counter after a successful login.
func (l *Limiter) ResetVerify(ctx context.Context, phone string) error {
	return l.client.Del(ctx, fmt.Sprintf("ratelimit:otp_verify:%s", phone)).Err()
}

func (l *Limiter) allow(ctx context.Context, key string, max int64, window time.Duration) (bool, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		l.client.Expire(ctx, key, window)
	}

	return count <= max, nil
}
