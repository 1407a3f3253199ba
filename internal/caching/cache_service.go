package caching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "sentinel:"

type CacheService interface {
	Ping(ctx context.Context) error

	// Login throttling
	AttemptCount(ctx context.Context, key string) (int64, error)
	IncrementAttempts(ctx context.Context, key string, window time.Duration) (int64, error)
	ResetAttempts(ctx context.Context, key string) error

	// Session revocation
	RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisCacheService struct {
	client redis.Cmdable
}

// NewRedisClient accepts a bare host:port or a redis:// / rediss:// address.
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).WithField("addr", parsedAddr).Warn("redis ping failed on initialization")
	} else {
		logrus.WithField("addr", parsedAddr).Debug("redis connection established")
	}
	return client
}

func NewRedisCacheService(client redis.Cmdable) CacheService {
	return &redisCacheService{client: client}
}

func attemptsKey(key string) string {
	return fmt.Sprintf("%slogin_attempts:%s", keyPrefix, key)
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("%srevoked_session:%s", keyPrefix, tokenID)
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) AttemptCount(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Get(ctx, attemptsKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

func (r *redisCacheService) IncrementAttempts(ctx context.Context, key string, window time.Duration) (int64, error) {
	cacheKey := attemptsKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return 0, err
	}
	// The window starts at the first failure.
	if count == 1 {
		if err := r.client.Expire(ctx, cacheKey, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (r *redisCacheService) ResetAttempts(ctx context.Context, key string) error {
	return r.client.Del(ctx, attemptsKey(key)).Err()
}

func (r *redisCacheService) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(tokenID), "revoked", ttl).Err()
}

func (r *redisCacheService) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
