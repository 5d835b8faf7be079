package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/collegeroi/roi-engine/pkg/config"
	"github.com/collegeroi/roi-engine/pkg/retry"
)

// NewRedisClient creates a new Redis client with the given configuration.
// Returns nil if Redis is not configured (addr is empty); the result cache
// is simply disabled in that case.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.ResolveAddrForDocker(cfg.Addr),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Redis may still be starting when the engine boots; retry the ping
	// the same way the reference-store connection does.
	ctx := context.Background()
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
