// Package cache: кэш ответов поиска: память (LRU с TTL) или redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCacheMiss: ключа нет или он истёк.
var ErrCacheMiss = errors.New("cache miss")

type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

type Config struct {
	Driver     string // memory | redis | none
	TTL        time.Duration
	MaxEntries int
	Redis      RedisConfig
}

// New создаёт драйвер по имени.
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryClient(cfg.MaxEntries, cfg.TTL), nil
	case "redis":
		return NewRedisClient(cfg.Redis)
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// Key склеивает части через ":".
func Key(parts ...string) string { return strings.Join(parts, ":") }

// Noop используется, когда кэш выключен. Всегда промах.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error { return nil }
func (Noop) DeleteByPrefix(context.Context, string) error { return nil }
func (Noop) Close() error { return nil }
