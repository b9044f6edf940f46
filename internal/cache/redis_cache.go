package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// ErrNotFound is returned when no prediction is cached under the key
var ErrNotFound = errors.New("prediction not found in cache")

// RedisCache caches fixture predictions in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 15 * time.Minute
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

// Key builds the cache key prediction:{model_id}:{home}:{away}.
// Team names are query-escaped so a ':' in a name cannot shift the fields.
func Key(modelID, homeTeam, awayTeam string) string {
	return fmt.Sprintf("prediction:%s:%s:%s", modelID, url.QueryEscape(homeTeam), url.QueryEscape(awayTeam))
}

// Set caches a prediction
func (c *RedisCache) Set(ctx context.Context, p *models.Prediction) error {
	key := Key(p.ModelID, p.Fixture.HomeTeam, p.Fixture.AwayTeam)

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Dur("ttl", c.ttl).
		Msg("cached prediction")

	return nil
}

// Get retrieves a cached prediction for a fixture under one model
func (c *RedisCache) Get(ctx context.Context, modelID string, fixture models.Fixture) (*models.Prediction, error) {
	key := Key(modelID, fixture.HomeTeam, fixture.AwayTeam)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var p models.Prediction
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prediction: %w", err)
	}

	return &p, nil
}

// SetBatch caches multiple predictions in one pipeline
func (c *RedisCache) SetBatch(ctx context.Context, predictions []*models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()

	for _, p := range predictions {
		key := Key(p.ModelID, p.Fixture.HomeTeam, p.Fixture.AwayTeam)
		data, err := json.Marshal(p)
		if err != nil {
			c.logger.Error().Err(err).Str("key", key).Msg("failed to marshal prediction")
			continue
		}
		pipe.Set(ctx, key, data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	c.logger.Info().
		Int("count", len(predictions)).
		Msg("cached batch of predictions")

	return nil
}

// GetByModel retrieves all cached predictions made by one model
func (c *RedisCache) GetByModel(ctx context.Context, modelID string) ([]*models.Prediction, error) {
	pattern := fmt.Sprintf("prediction:%s:*", modelID)

	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return []*models.Prediction{}, nil
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get predictions: %w", err)
	}

	predictions := make([]*models.Prediction, 0, len(keys))
	for i, v := range values {
		// Key expired between SCAN and MGET
		s, ok := v.(string)
		if !ok {
			continue
		}

		var p models.Prediction
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			c.logger.Warn().Err(err).Str("key", keys[i]).Msg("failed to unmarshal prediction")
			continue
		}

		predictions = append(predictions, &p)
	}

	return predictions, nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
