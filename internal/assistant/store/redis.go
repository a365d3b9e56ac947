package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/genius-ai/assistant/internal/core/error"
	logx "github.com/genius-ai/assistant/pkg/logger"

	"github.com/genius-ai/assistant/internal/assistant/model"
)

// RedisBackend keeps the durable logs as plain key -> JSON-string values.
// Each write replaces the whole value and refreshes the optional TTL, so
// an active profile's logs never expire mid-conversation.
type RedisBackend struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisBackend wraps a Redis client as a storage backend. A zero ttl
// keeps keys forever.
func NewRedisBackend(rdb redis.Cmdable, ttl time.Duration) *RedisBackend {
	return &RedisBackend{rdb: rdb, ttl: ttl}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to read key from redis")
		return "", false, errx.WrapRedis(err)
	}
	return v, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value string) error {
	if err := b.rdb.Set(ctx, key, value, b.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write key to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete key from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.StorageBackend = (*RedisBackend)(nil)
