package services

import (
	"context"
	"fmt"
	"time"

	"tushare/internal/utils"
)

// TokenBlacklist revokes JWTs by jti. Entries live as long as the longest
// token lifetime, after which the token is expired anyway and the key can
// lapse.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type tokenBlacklist struct {
	cache CacheService
	ttl   time.Duration
}

func NewTokenBlacklist(cache CacheService, ttl time.Duration) TokenBlacklist {
	if ttl <= 0 {
		ttl = utils.JWTRefreshTokenTTL
	}
	return &tokenBlacklist{
		cache: cache,
		ttl:   ttl,
	}
}

// Revoke is idempotent. The SETNX write keeps the first revocation's
// TTL when a jti is revoked again, so the entry never outlives the
// longest token lifetime.
func (b *tokenBlacklist) Revoke(ctx context.Context, jti string) error {
	key := blacklistKey(jti)
	if _, err := b.cache.SetNX(ctx, key, true, b.ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (b *tokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.cache.Exists(ctx, blacklistKey(jti))
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists, nil
}

func blacklistKey(jti string) string {
	return utils.CacheKeyBlacklistPrefix + jti
}
