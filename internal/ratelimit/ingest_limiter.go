package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smetelco/portal/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyUsageIngestLine = "usage:ingest:line:%s"

// IngestLimiter limits usage event submissions per line. Disabled when no
// redis address is configured.
type IngestLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	LC     fx.Lifecycle
}

func NewIngestLimiter(p Params) *IngestLimiter {
	addr := strings.TrimSpace(p.Config.RedisAddr)
	if addr == "" {
		p.Log.Named("ratelimit").Info("redis not configured, ingest rate limiting disabled")
		return &IngestLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(p.Config.RedisPassword),
	})
	p.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return &IngestLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    p.Config.IngestRatePerSecond,
		burst:   p.Config.IngestBurst,
	}
}

func (l *IngestLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *IngestLimiter) AllowLine(ctx context.Context, lineID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyUsageIngestLine, strings.TrimSpace(lineID)), l.rate, l.burst)
}

var Module = fx.Module("ratelimit",
	fx.Provide(NewIngestLimiter),
)
