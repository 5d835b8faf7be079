// Package cache provides an optional Redis-backed cache for computed
// scenario results. The reference store only changes between process
// restarts, so identical requests within the TTL can reuse a prior
// computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/models"
)

const keyPrefix = "roi:scenario:"

// ScenarioCache stores ScenarioResults keyed by a hash of the request. A nil
// *ScenarioCache is valid and disables caching, so callers never branch on
// configuration.
type ScenarioCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a cache around an optional Redis client. Returns nil (cache
// disabled) when the client is nil.
func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ScenarioCache {
	if client == nil {
		return nil
	}
	return &ScenarioCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("scenario-cache"),
	}
}

// Get returns the cached result for a request, or (nil, false) on a miss.
// Cache failures are misses, never request failures.
func (c *ScenarioCache) Get(ctx context.Context, req *models.ScenarioRequest) (*models.ScenarioResult, bool) {
	if c == nil {
		return nil, false
	}

	key, err := requestKey(req)
	if err != nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var result models.ScenarioResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Debug("cache entry corrupt, ignoring", zap.Error(err))
		return nil, false
	}
	return &result, true
}

// Set stores a result under the request's key. Failures are logged and
// swallowed.
func (c *ScenarioCache) Set(ctx context.Context, req *models.ScenarioRequest, result *models.ScenarioResult) {
	if c == nil {
		return
	}

	key, err := requestKey(req)
	if err != nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Debug("failed to marshal result for cache", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("cache write failed", zap.Error(err))
	}
}

// requestKey hashes the canonical JSON form of the request. Two requests
// marshal identically iff they ask for the same computation.
func requestKey(req *models.ScenarioRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}
