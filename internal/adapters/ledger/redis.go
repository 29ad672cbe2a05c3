package ledger

import (
	"context"
	"time"

	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pix:processed:"

// RedisLedger is a shared idempotency ledger backed by Redis SETNX, so
// every service replica agrees on which payments were already handled.
type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLedger connects to Redis using the ledger configuration and
// verifies the connection before returning.
func NewRedisLedger(ctx context.Context, cfg *config.LedgerConfig) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "failed to connect to redis", err)
	}

	return &RedisLedger{client: client, ttl: cfg.TTL}, nil
}

// MarkIfAbsent atomically records the end-to-end id with the ledger TTL and
// reports whether this call was the first to see it.
func (l *RedisLedger) MarkIfAbsent(ctx context.Context, endToEndID string) (bool, error) {
	first, err := l.client.SetNX(ctx, keyPrefix+endToEndID, "1", l.ttl).Result()
	if err != nil {
		return false, domain.WrapError(domain.ErrorCodeLedgerError, "failed to mark payment in ledger", err)
	}
	return first, nil
}

// Close releases the Redis connection.
func (l *RedisLedger) Close() error {
	return l.client.Close()
}
