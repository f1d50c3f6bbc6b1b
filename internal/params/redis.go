package params

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FXSentinel/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string // hash holding all parameters
	Timeout  time.Duration
}

// RedisStore keeps parameters as fields of one Redis hash, so several
// dashboard processes share the same settings.
type RedisStore struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Key == "" {
		opts.Key = "fxsentinel:params"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis params store",
		logger.String("addr", opts.Addr),
		logger.String("key", opts.Key),
	)
	return &RedisStore{client: rdb, key: opts.Key, timeout: opts.Timeout}, nil
}

func (r *RedisStore) Get(key, def string) string {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return def
	}
	if err != nil {
		logger.Warn("params lookup failed", logger.String("key", key), logger.ErrorField(err))
		return def
	}
	return v
}

func (r *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.HSet(ctx, r.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
