// Package idempotency backs the Idempotency-Key header of invoice creation with Redis.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"shopbill/internal/config"
	"shopbill/internal/domain"
	"shopbill/internal/port"
)

const keyPrefix = "idempotency:invoice:"

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

type redisStore struct {
	rdb     *redis.Client
	locker  *redislock.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore creates an IdempotencyStore. Committed keys live for IdempotencyTTL;
// an in-flight claim expires after LockTTL if its holder dies.
func NewRedisStore(rdb *redis.Client, cfg config.RedisConfig) port.IdempotencyStore {
	return &redisStore{
		rdb:     rdb,
		locker:  redislock.New(rdb),
		ttl:     cfg.IdempotencyTTL,
		lockTTL: cfg.LockTTL,
	}
}

func resultKey(key string) string { return keyPrefix + key }
func lockKey(key string) string   { return keyPrefix + key + ":lock" }

func (s *redisStore) lookup(ctx context.Context, key string) (uuid.UUID, error) {
	val, err := s.rdb.Get(ctx, resultKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("idempotency lookup: corrupt value for %q: %w", key, err)
	}
	return id, nil
}

func (s *redisStore) Acquire(ctx context.Context, key string) (uuid.UUID, func(), error) {
	if id, err := s.lookup(ctx, key); err != nil || id != uuid.Nil {
		return id, nil, err
	}

	lock, err := s.locker.Obtain(ctx, lockKey(key), s.lockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return uuid.Nil, nil, domain.ErrDuplicateSubmission
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("idempotency lock: %w", err)
	}
	release := func() { _ = lock.Release(context.Background()) }

	// The previous holder may have completed between the lookup and the lock.
	id, err := s.lookup(ctx, key)
	if err != nil || id != uuid.Nil {
		release()
		return id, nil, err
	}
	return uuid.Nil, release, nil
}

func (s *redisStore) Complete(ctx context.Context, key string, invoiceID uuid.UUID) error {
	if err := s.rdb.Set(ctx, resultKey(key), invoiceID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}
