package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
	rds "github.com/redis/go-redis/v9"
)

type Redis struct {
	Client *rds.Client
	Logger *logger.Logger
}

var ErrCacheMiss = errors.New("cache miss")

func New(config *config.Config, logger *logger.Logger) (*Redis, func(), error) {
	ops, err := rds.ParseURL(config.Redis.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	redis := NewWithClient(rds.NewClient(ops), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redis.Ping(ctx); err != nil {
		_ = redis.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	cleanUp := func() {
		_ = redis.Close()
	}

	return redis, cleanUp, nil
}

func NewWithClient(client *rds.Client, logger *logger.Logger) *Redis {
	return &Redis{
		Client: client,
		Logger: logger,
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

func (r *Redis) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}

	r.Logger.Debug().Str("key", key).Msg("setting cache value")
	return r.Client.Set(ctx, key, v, expiration).Err()
}

func (r *Redis) Get(ctx context.Context, key string, dest any) error {
	r.Logger.Debug().Str("key", key).Msg("getting cache value")
	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rds.Nil) {
			r.Logger.Debug().Str("key", key).Msg("cache miss")
			return ErrCacheMiss
		}
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// Take reads a value and deletes it in one step, for one-time tokens.
func (r *Redis) Take(ctx context.Context, key string, dest any) error {
	r.Logger.Debug().Str("key", key).Msg("taking cache value")
	val, err := r.Client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rds.Nil) {
			return ErrCacheMiss
		}
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	r.Logger.Debug().Str("key", key).Msg("deleting cache value")
	return r.Client.Del(ctx, key).Err()
}
