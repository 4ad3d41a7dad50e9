package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is a fixed-window counter on Redis. The window TTL is set only
// when the key is first created, so the window does not slide on every hit.
type RedisCounter struct {
	client redis.Cmdable
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, "throttle:"+key)
	pipe.ExpireNX(ctx, "throttle:"+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("throttle incr: %w", err)
	}
	return incr.Val(), nil
}
