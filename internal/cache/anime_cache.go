package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"anilog/internal/review"

	"github.com/redis/go-redis/v9"
)

const topRatedKey = "rank:anime:top"

// AnimeCache holds per-anime review aggregates and the top-rated ranking in
// redis. A nil *AnimeCache is valid and behaves as an always-missing cache.
type AnimeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(redisURL, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewAnimeCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *AnimeCache {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnimeCache{client: client, ttl: ttl, logger: logger}
}

func aggregateKey(animeID int64) string {
	return fmt.Sprintf("anime:agg:%d", animeID)
}

// GetAggregate returns the cached aggregate and whether it was found.
func (c *AnimeCache) GetAggregate(ctx context.Context, animeID int64) (review.Aggregate, bool) {
	var agg review.Aggregate
	if c == nil || c.client == nil {
		return agg, false
	}
	raw, err := c.client.Get(ctx, aggregateKey(animeID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("anime cache read failed", "anime_id", animeID, "error", err)
		}
		return agg, false
	}
	if err := json.Unmarshal([]byte(raw), &agg); err != nil {
		return agg, false
	}
	return agg, true
}

func (c *AnimeCache) SetAggregate(ctx context.Context, animeID int64, agg review.Aggregate) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(agg)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, aggregateKey(animeID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("anime cache write failed", "anime_id", animeID, "error", err)
	}
}

// Refresh drops the cached aggregate and moves the anime in the ranking.
// Anime with no reviews leave the ranking.
func (c *AnimeCache) Refresh(ctx context.Context, animeID int64, agg review.Aggregate) {
	if c == nil || c.client == nil {
		return
	}
	member := strconv.FormatInt(animeID, 10)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, aggregateKey(animeID))
	if agg.ReviewCount > 0 {
		pipe.ZAdd(ctx, topRatedKey, redis.Z{Score: agg.Rating, Member: member})
	} else {
		pipe.ZRem(ctx, topRatedKey, member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("anime cache refresh failed", "anime_id", animeID, "error", err)
	}
}

// Forget removes every trace of a deleted anime.
func (c *AnimeCache) Forget(ctx context.Context, animeID int64) {
	if c == nil || c.client == nil {
		return
	}
	member := strconv.FormatInt(animeID, 10)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, aggregateKey(animeID))
	pipe.ZRem(ctx, topRatedKey, member)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("anime cache forget failed", "anime_id", animeID, "error", err)
	}
}

// TopRated returns anime ids by average rating, best first. ok is false when
// the ranking is unavailable or empty so callers fall back to the database.
func (c *AnimeCache) TopRated(ctx context.Context, limit int) ([]int64, bool) {
	if c == nil || c.client == nil || limit <= 0 {
		return nil, false
	}
	members, err := c.client.ZRevRange(ctx, topRatedKey, 0, int64(limit-1)).Result()
	if err != nil {
		c.logger.Warn("anime ranking read failed", "error", err)
		return nil, false
	}
	if len(members) == 0 {
		return nil, false
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, true
}

// Rebuild replaces the ranking with the given aggregates.
func (c *AnimeCache) Rebuild(ctx context.Context, aggs map[int64]review.Aggregate) error {
	if c == nil || c.client == nil {
		return nil
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, topRatedKey)
	for id, agg := range aggs {
		if agg.ReviewCount == 0 {
			continue
		}
		pipe.ZAdd(ctx, topRatedKey, redis.Z{Score: agg.Rating, Member: strconv.FormatInt(id, 10)})
	}
	_, err := pipe.Exec(ctx)
	return err
}
