package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"content_fetcher/internal/domain"
)

const DefaultSourceInfoTTL = 24 * time.Hour

// CachedSourceInfo decorates a Connector with a Redis cache for GetSourceInfo.
// Redis errors fall through to the wrapped connector.
type CachedSourceInfo struct {
	Connector
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func WithSourceInfoCache(c Connector, rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedSourceInfo {
	if ttl <= 0 {
		ttl = DefaultSourceInfoTTL
	}
	return &CachedSourceInfo{
		Connector: c,
		rdb:       rdb,
		ttl:       ttl,
		logger:    logger.With("platform", c.Platform(), "component", "sourceinfo_cache"),
	}
}

func (c *CachedSourceInfo) GetSourceInfo(ctx context.Context, sourceID string) (*domain.SourceInfo, error) {
	key := sourceInfoKey(c.Platform(), sourceID)

	raw, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var info domain.SourceInfo
		if jsonErr := json.Unmarshal([]byte(raw), &info); jsonErr == nil {
			return &info, nil
		}
		c.logger.Warn("discarding corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	info, err := c.Connector.GetSourceInfo(ctx, sourceID)
	if err != nil || info == nil {
		return info, err
	}

	if data, err := json.Marshal(info); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return info, nil
}

func sourceInfoKey(platform domain.Platform, sourceID string) string {
	return fmt.Sprintf("sourceinfo:%s:%s", platform, sourceID)
}
