package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultMaxEntries = 2048
	defaultTTL        = 5 * time.Minute
)

// MemoryClient: ограниченный LRU с общим TTL на все записи.
type MemoryClient struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryClient(maxEntries int, ttl time.Duration) *MemoryClient {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryClient{lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl)}
}

func (c *MemoryClient) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

// ttl игнорируется, срок жизни задан при создании.
func (c *MemoryClient) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.lru.Add(key, value)
	return nil
}

func (c *MemoryClient) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

func (c *MemoryClient) DeleteByPrefix(_ context.Context, prefix string) error {
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
	return nil
}

func (c *MemoryClient) Len() int { return c.lru.Len() }

func (c *MemoryClient) Close() error {
	c.lru.Purge()
	return nil
}
