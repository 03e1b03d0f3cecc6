package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	repo "github.com/daniellescalera/user-management/internal/domain/repository"
	"github.com/daniellescalera/user-management/pkg/helpers"
)

const retentionCacheKey = "analytics:retention"

// Retention is the share of accounts modified after creation.
type Retention struct {
	TotalSignups   int     `json:"total_signups"`
	ReturningUsers int     `json:"returning_users"`
	RetentionRate  float64 `json:"retention_rate"`
}

// RetentionRate is returning/total as a percentage rounded to two decimals, 0 when total is 0.
func RetentionRate(total, returning int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(returning)/float64(total)*100*100) / 100
}

type AnalyticsService struct {
	Repo     repo.UserRepository
	Redis    redis.Cmdable // optional cache
	CacheTTL time.Duration
	Logger   *logrus.Logger
}

func NewAnalyticsService(r repo.UserRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *AnalyticsService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &AnalyticsService{Repo: r, Redis: rdb, CacheTTL: ttl, Logger: logger}
}

func (a *AnalyticsService) cacheEnabled() bool {
	return a.Redis != nil && a.CacheTTL > 0
}

// Retention computes the retention metric, served from Redis when cached.
func (a *AnalyticsService) Retention(ctx context.Context) (Retention, error) {
	if a.cacheEnabled() {
		var cached Retention
		hit, err := helpers.RedisGetJSON(ctx, a.Redis, retentionCacheKey, &cached)
		if err != nil {
			a.Logger.WithError(err).Warn("retention cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	c, err := a.Repo.CountRetention(ctx)
	if err != nil {
		return Retention{}, fmt.Errorf("count retention: %w", err)
	}
	out := Retention{
		TotalSignups:   c.Total,
		ReturningUsers: c.Returning,
		RetentionRate:  RetentionRate(c.Total, c.Returning),
	}

	if a.cacheEnabled() {
		if err := helpers.RedisSetJSON(ctx, a.Redis, retentionCacheKey, out, a.CacheTTL); err != nil {
			a.Logger.WithError(err).Warn("retention cache write failed")
		}
	}
	return out, nil
}
