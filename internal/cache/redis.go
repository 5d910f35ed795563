// Package cache provides the Redis client used for rate limiting and the token denylist.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ureca-react-blog/Backend/internal/middleware"
	"github.com/ureca-react-blog/Backend/internal/observability"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to addr, which may be "host:port" or a redis:// URL.
// An empty addr means Redis is not configured and returns (nil, nil).
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(observability.RedisMetricsHook{})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	middleware.Logger.Info("Redis connected successfully")
	return client, nil
}
