package redis_repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	_instances = sync.Map{}
)

// GetRedisClient 同一 address 共用同一個 client
func GetRedisClient(ctx context.Context, address string, options ...Option) (*redis.Client, error) {
	if client, ok := _instances.Load(address); ok {
		return client.(*redis.Client), nil
	}

	client := createRedisClient(address, options...)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis %s: %w", address, err)
	}

	actual, loaded := _instances.LoadOrStore(address, client)
	if loaded {
		client.Close()
	}
	return actual.(*redis.Client), nil
}

func createRedisClient(address string, options ...Option) *redis.Client {
	opts := &redis.Options{
		Addr: address,
	}

	for _, option := range options {
		option(opts)
	}

	return redis.NewClient(opts)
}

type Option func(*redis.Options)

func WithPassword(password string) Option {
	return func(o *redis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *redis.Options) {
		o.DB = db
	}
}

func WithPoolSize(poolSize int) Option {
	return func(o *redis.Options) {
		o.PoolSize = poolSize
	}
}
