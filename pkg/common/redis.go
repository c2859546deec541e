package common

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/searchd-io/searchd/pkg/types"
)

// RedisClient wraps a universal go-redis client configured from RedisConfig
type RedisClient struct {
	redis.UniversalClient
}

type redisClientOptions struct {
	clientName string
}

type RedisClientOption func(*redisClientOptions)

// WithClientName sets the client name reported to the Redis server
func WithClientName(name string) RedisClientOption {
	return func(o *redisClientOptions) {
		o.clientName = name
	}
}

// NewRedisClient creates a Redis client from config and verifies connectivity
func NewRedisClient(cfg types.RedisConfig, opts ...RedisClientOption) (*RedisClient, error) {
	options := &redisClientOptions{clientName: cfg.ClientName}
	for _, opt := range opts {
		opt(options)
	}

	universalOpts := &redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		ClientName:   options.clientName,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxIdleConns: cfg.MaxIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	}

	if cfg.EnableTLS {
		universalOpts.TLSConfig = &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		}
	}

	var client redis.UniversalClient
	if cfg.Mode == types.RedisModeCluster {
		client = redis.NewClusterClient(universalOpts.Cluster())
	} else {
		client = redis.NewClient(universalOpts.Simple())
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Strs("addrs", cfg.Addrs).Str("mode", string(cfg.Mode)).Msg("connected to redis")

	return &RedisClient{UniversalClient: client}, nil
}
