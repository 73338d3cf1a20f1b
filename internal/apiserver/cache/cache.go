package cache

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL       = 30 * time.Minute
	defaultMaxMemory = 16 * 1024 * 1024
	defaultKeyPrefix = "shopinspector:cache:"
)

// Layer names the tier that answered a lookup
type Layer string

const (
	LayerMemory Layer = "memory"
	LayerRedis  Layer = "redis"
)

// Config holds the cache settings. Redis is optional; without it only the memory layer is used.
type Config struct {
	Redis     redis.Cmdable
	KeyPrefix string
	TTL       time.Duration
	MaxMemory int64 // bytes held by the memory layer
}

// Stats are the cache counters
type Stats struct {
	Entries   int     `json:"entries"`
	Bytes     int64   `json:"bytes"`
	Hits      int64   `json:"hits"`
	RedisHits int64   `json:"redisHits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hitRate"`
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// Cache is a byte cache with an LRU memory layer in front of an optional Redis layer.
// Values read from Redis are promoted into memory.
type Cache struct {
	logger    *zap.Logger
	redis     redis.Cmdable
	keyPrefix string
	ttl       time.Duration
	maxMemory int64
	now       func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List // front is most recently used
	size  int64
	stats Stats
}

func New(cfg Config, logger *zap.Logger) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = defaultMaxMemory
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	return &Cache{
		logger:    logger.Named("cache"),
		redis:     cfg.Redis,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
		maxMemory: cfg.MaxMemory,
		now:       time.Now,
		items:     make(map[string]*list.Element),
		lru:       list.New(),
	}
}

// Get returns the cached value and the layer that held it. Redis failures count as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, Layer, bool) {
	if v, ok := c.getMemory(key); ok {
		c.count(func(s *Stats) { s.Hits++ })
		return v, LayerMemory, true
	}

	if c.redis != nil {
		v, err := c.redis.Get(ctx, c.keyPrefix+key).Bytes()
		switch {
		case err == nil:
			c.setMemory(key, v)
			c.count(func(s *Stats) { s.Hits++; s.RedisHits++ })
			return v, LayerRedis, true
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("redis lookup failed", zap.String("key", key), zap.Error(err))
		}
	}

	c.count(func(s *Stats) { s.Misses++ })
	return nil, "", false
}

// Set stores value in both layers. The memory copy is kept even when Redis rejects the write.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	c.setMemory(key, value)
	if c.redis == nil {
		return nil
	}
	return c.redis.Set(ctx, c.keyPrefix+key, value, c.ttl).Err()
}

// Delete drops key from both layers
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
	c.mu.Unlock()

	if c.redis == nil {
		return nil
	}
	return c.redis.Del(ctx, c.keyPrefix+key).Err()
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.items)
	s.Bytes = c.size
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

func (c *Cache) getMemory(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if !c.now().Before(e.expiresAt) {
		c.remove(el)
		return nil, false
	}
	c.lru.MoveToFront(el)
	return e.value, true
}

func (c *Cache) setMemory(key string, value []byte) {
	n := int64(len(value))
	if n > c.maxMemory {
		c.logger.Debug("value larger than the memory layer, not kept", zap.String("key", key), zap.Int64("bytes", n))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
	for c.size+n > c.maxMemory {
		c.remove(c.lru.Back())
		c.stats.Evictions++
	}
	c.items[key] = c.lru.PushFront(&entry{key: key, value: value, expiresAt: c.now().Add(c.ttl)})
	c.size += n
}

// remove expects c.mu to be held
func (c *Cache) remove(el *list.Element) {
	e := c.lru.Remove(el).(*entry)
	delete(c.items, e.key)
	c.size -= int64(len(e.value))
}

func (c *Cache) count(fn func(*Stats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}
