package cache

import (
	"context"
	"errors"
	"time"
)

// Provider is the minimal cache surface used to memoize rendered
// recommendation responses.
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// ErrCacheMiss signals an absent key.
var ErrCacheMiss = errors.New("cache miss")

// NoopProvider satisfies Provider without storing anything; it is the
// default when no cache backend is configured.
type NoopProvider struct{}

func (NoopProvider) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }

func (NoopProvider) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopProvider) Del(context.Context, string) error { return nil }

func (NoopProvider) Close() error { return nil }
