package common

import (
	"context"
	"fmt"

	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/redis/go-redis/v9"
)

// RedisClient wraps go-redis with the small surface the service needs.
type RedisClient struct {
	*redis.Client
}

type RedisClientOption func(*redis.Options)

// WithClientName sets the client name reported to the Redis server.
func WithClientName(name string) RedisClientOption {
	return func(o *redis.Options) {
		o.ClientName = name
	}
}

func NewRedisClient(cfg types.RedisConfig, opts ...RedisClientOption) (*RedisClient, error) {
	options := &redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		ClientName:   cfg.ClientName,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(options)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisClient{Client: client}, nil
}

// Subscribe subscribes to the given channel and returns message and error
// channels. The subscription is closed when ctx is cancelled.
func (r *RedisClient) Subscribe(ctx context.Context, channel string) (<-chan *redis.Message, <-chan error) {
	errs := make(chan error, 1)
	pubsub := r.Client.Subscribe(ctx, channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		errs <- err
		pubsub.Close()
		return pubsub.Channel(), errs
	}

	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()

	return pubsub.Channel(), errs
}
