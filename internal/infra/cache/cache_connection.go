package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"cartflow/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// New dials the Redis client used for the promotion-candidate read
// cache.
func New(cfg *Config) *redis.Client {
	options := &redis.Options{
		Addr:       fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.Db,
		PoolSize:   cfg.PoolSize,
		ClientName: cfg.ClientName,
	}

	if cfg.UseTLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: cfg.SkipVerify,
		}
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Timeout)*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Errorf("failed to connect to redis: %v", err)
		return nil
	}

	return client
}
