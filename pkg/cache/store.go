package cache

import (
	"context"
	"time"
)

// Store is the subset of cache operations the services rely on.
type Store interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Take(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
}

var (
	_ Store = (*Redis)(nil)
	_ Store = (*Memory)(nil)
)
