package redis

import (
	"context"
	"fmt"
	"time"

	"edu-network/internal/auth"

	"github.com/redis/go-redis/v9"
)

// revokedKeyPrefix namespaces revoked access-token ids in a Redis shared with other services.
const revokedKeyPrefix = "edu-network:auth:revoked:"

// revokedTokens 是 auth.TokenBlacklist 的 Redis 实现，多实例部署时共享登出状态。
type revokedTokens struct {
	client redis.UniversalClient
}

// NewRedisTokenBlacklist accepts a single-node or cluster client.
func NewRedisTokenBlacklist(client redis.UniversalClient) auth.TokenBlacklist {
	return &revokedTokens{client: client}
}

func revokedKey(jti string) string {
	return revokedKeyPrefix + jti
}

// revocationTTL is how long a revocation must be kept; false means the token has already expired.
func revocationTTL(tokenExpiry, now time.Time) (time.Duration, bool) {
	ttl := tokenExpiry.Sub(now)
	// Redis 过期精度为毫秒，不足 1ms 的不再记录
	if ttl < time.Millisecond {
		return 0, false
	}
	return ttl, true
}

func (r *revokedTokens) Add(ctx context.Context, jti string, tokenExpiry time.Time) error {
	ttl, ok := revocationTTL(tokenExpiry, time.Now())
	if !ok {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(jti), tokenExpiry.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}
	return nil
}

func (r *revokedTokens) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token %s: %w", jti, err)
	}
	return n > 0, nil
}
