package redis

import (
	"context"
	"errors"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache struct {
	cli *redis.Client
}

func New(conf config.RedisConfig) *Cache {
	cli := redis.NewClient(
		&redis.Options{
			Addr:     conf.Addr,
			Password: conf.Pass,
			DB:       conf.DB,
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := cli.Ping(ctx).Result(); err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}

	return &Cache{cli: cli}
}

func (c *Cache) Close() error {
	return c.cli.Close()
}

func (c *Cache) GetToStruct(ctx context.Context, key string, dest any) error {
	const op = "cache.GetToStruct.redis"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	val, err := c.cli.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}

		zap.L().Debug("failed to get from cache", zap.String("op", op), zap.String("key", key), zap.Error(err))
		return err
	}

	return json.Unmarshal(val, dest)
}

func (c *Cache) Set(ctx context.Context, t time.Duration, key string, val any) {
	const op = "cache.Set.redis"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := c.cli.Set(ctx, key, val, t).Err(); err != nil {
		zap.L().Debug("failed to set to cache", zap.String("op", op), zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) Delete(ctx context.Context, key string) {
	const op = "cache.Delete.redis"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := c.cli.Del(ctx, key).Err(); err != nil {
		zap.L().Debug("failed to delete from cache", zap.String("op", op), zap.String("key", key), zap.Error(err))
	}
}

// incrWindowSrc increments the counter and gives it a TTL in the same step. A
// key found without a TTL gets one too.
const incrWindowSrc = `
local n = redis.call('INCR', KEYS[1])
if n == 1 or redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`

var incrWindow = redis.NewScript(incrWindowSrc)

// Incr bumps a fixed-window counter. The window starts with the first hit.
func (c *Cache) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	const op = "cache.Incr.redis"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	n, err := incrWindow.Run(ctx, c.cli, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		return 0, err
	}
	return n, nil
}
