// internal/revocation/redis_blacklist.go
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlacklist stores revoked JTIs as TTL'd keys so Redis expires them
// without a sweep.
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, identityID int64, expiresAt time.Time, reason string) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already past expiry, the signature check rejects it on its own.
		return nil
	}
	key := blacklistKey(jti)
	value := fmt.Sprintf("%d:%s", identityID, reason)
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}

// PurgeExpired is a no-op for Redis; keys expire via their TTL.
func (b *RedisBlacklist) PurgeExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}
