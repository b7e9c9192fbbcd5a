package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenyList records revoked token ids until the tokens expire
type TokenDenyList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisDenyList keeps revoked token ids as expiring Redis keys
type RedisDenyList struct {
	redis  *redis.Client
	prefix string
}

func NewRedisDenyList(client *redis.Client) *RedisDenyList {
	return &RedisDenyList{redis: client, prefix: "auth:revoked"}
}

func (d *RedisDenyList) key(tokenID string) string {
	return fmt.Sprintf("%s:%s", d.prefix, tokenID)
}

func (d *RedisDenyList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.redis.Set(ctx, d.key(tokenID), 1, ttl).Err()
}

func (d *RedisDenyList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := d.redis.Get(ctx, d.key(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// NoopDenyList is used without Redis: logout succeeds and the client
// discards its token.
type NoopDenyList struct{}

func (NoopDenyList) Revoke(context.Context, string, time.Duration) error { return nil }

func (NoopDenyList) IsRevoked(context.Context, string) (bool, error) { return false, nil }
