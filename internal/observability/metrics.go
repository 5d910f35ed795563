package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	// AuthEvents counts authentication outcomes by event and result.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_auth_events_total",
		Help: "Authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// PostsCreated counts stored posts by whether a cover file was attached.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_posts_created_total",
		Help: "Total number of posts created",
	}, []string{"with_cover"})

	// UploadBytes records the size of stored cover files.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blog_upload_bytes",
		Help:    "Size of uploaded cover files in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	// OrphanCleanups counts uploads removed because the post insert failed.
	OrphanCleanups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_upload_orphan_cleanups_total",
		Help: "Uploaded files removed after a failed post insert",
	}, []string{"outcome"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

// RedisMetricsHook counts failed Redis commands. redis.Nil is not an error.
type RedisMetricsHook struct{}

func (RedisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (RedisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (RedisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}
