package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// ErrNotFound is returned when a key is absent or expired
var ErrNotFound = errors.New("not found in cache")

// RedisCache stores evaluations, notification markers and provider responses in Redis
type RedisCache struct {
	client   *redis.Client
	ttl      time.Duration
	dedupTTL time.Duration
	logger   zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // evaluations, e.g., 24 * time.Hour
	DedupTTL time.Duration // notification markers
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	dedupTTL := config.DedupTTL
	if dedupTTL <= 0 {
		dedupTTL = 2 * config.TTL
	}

	return &RedisCache{
		client:   client,
		ttl:      config.TTL,
		dedupTTL: dedupTTL,
		logger:   logger.With().Str("component", "redis_cache").Logger(),
	}
}

func evaluationKey(fixtureID string) string {
	return fmt.Sprintf("evaluation:%s", fixtureID)
}

func leagueIndexKey(league string) string {
	return fmt.Sprintf("league:%s:evaluations", league)
}

func notifiedKey(fixtureID string, market models.Market) string {
	return fmt.Sprintf("notified:%s:%s", fixtureID, market)
}

func rawKey(key string) string {
	return fmt.Sprintf("provider:%s", key)
}

// Set caches an evaluation and indexes it under its league
func (c *RedisCache) Set(ctx context.Context, eval *models.Evaluation) error {
	key := evaluationKey(eval.FixtureID)

	data, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	if eval.LeagueCode != "" {
		pipe.SAdd(ctx, leagueIndexKey(eval.LeagueCode), eval.FixtureID)
		pipe.Expire(ctx, leagueIndexKey(eval.LeagueCode), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Dur("ttl", c.ttl).
		Msg("cached evaluation")

	return nil
}

// Get retrieves a cached evaluation
func (c *RedisCache) Get(ctx context.Context, fixtureID string) (*models.Evaluation, error) {
	data, err := c.client.Get(ctx, evaluationKey(fixtureID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("evaluation %s: %w", fixtureID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var eval models.Evaluation
	if err := json.Unmarshal(data, &eval); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
	}

	return &eval, nil
}

// SetBatch caches multiple evaluations
func (c *RedisCache) SetBatch(ctx context.Context, evals []*models.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()

	for _, eval := range evals {
		data, err := json.Marshal(eval)
		if err != nil {
			c.logger.Error().Err(err).Str("fixture_id", eval.FixtureID).Msg("failed to marshal evaluation")
			continue
		}
		pipe.Set(ctx, evaluationKey(eval.FixtureID), data, c.ttl)
		if eval.LeagueCode != "" {
			pipe.SAdd(ctx, leagueIndexKey(eval.LeagueCode), eval.FixtureID)
			pipe.Expire(ctx, leagueIndexKey(eval.LeagueCode), c.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	c.logger.Info().
		Int("count", len(evals)).
		Msg("cached batch of evaluations")

	return nil
}

// GetByLeague retrieves every cached evaluation of a league; expired entries are skipped
func (c *RedisCache) GetByLeague(ctx context.Context, league string) ([]*models.Evaluation, error) {
	ids, err := c.client.SMembers(ctx, leagueIndexKey(league)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read league index: %w", err)
	}

	evals := make([]*models.Evaluation, 0, len(ids))
	for _, id := range ids {
		eval, err := c.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			c.client.SRem(ctx, leagueIndexKey(league), id)
			continue
		}
		if err != nil {
			c.logger.Warn().Err(err).Str("fixture_id", id).Msg("failed to get evaluation")
			continue
		}
		evals = append(evals, eval)
	}

	return evals, nil
}

// MarkNotified records that a fixture/market notification went out.
// It returns false when the marker already existed.
func (c *RedisCache) MarkNotified(ctx context.Context, fixtureID string, market models.Market) (bool, error) {
	ok, err := c.client.SetNX(ctx, notifiedKey(fixtureID, market), time.Now().UTC().Format(time.RFC3339), c.dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set notification marker: %w", err)
	}
	return ok, nil
}

// ClearNotified removes a notification marker so a failed send can be retried
func (c *RedisCache) ClearNotified(ctx context.Context, fixtureID string, market models.Market) error {
	if err := c.client.Del(ctx, notifiedKey(fixtureID, market)).Err(); err != nil {
		return fmt.Errorf("failed to clear notification marker: %w", err)
	}
	return nil
}

// GetRaw returns a cached provider response
func (c *RedisCache) GetRaw(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, rawKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}
	return data, nil
}

// SetRaw caches a provider response for ttl
func (c *RedisCache) SetRaw(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, rawKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}
	return nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
