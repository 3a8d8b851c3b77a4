package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ Cache = new(LocalCache)

type LocalCacheOption func(cache *gocache.Cache)

// LocalCacheWithEvictedCallback 键被删除或者过期之后的回调
func LocalCacheWithEvictedCallback(fn func(key string, val any)) LocalCacheOption {
	return func(cache *gocache.Cache) {
		cache.OnEvicted(fn)
	}
}

// LocalCache 进程内缓存, 定时轮询删除过期的键
// 轮询不保证每个过期的键都能及时被删除, 所以 Get 的时候 go-cache 还会再检查一次是否过期
type LocalCache struct {
	c *gocache.Cache
}

// NewLocalCache interval 是轮询删除过期键的间隔
func NewLocalCache(interval time.Duration, opts ...LocalCacheOption) *LocalCache {
	// 默认永不过期, 每次 Set 都会传入过期时间
	c := gocache.New(gocache.NoExpiration, interval)
	for _, opt := range opts {
		opt(c)
	}
	return &LocalCache{c: c}
}

func (l *LocalCache) Set(ctx context.Context, key string, val any, expiration time.Duration) error {
	if expiration <= 0 {
		// expiration == 0 是永不过期
		expiration = gocache.NoExpiration
	}
	l.c.Set(key, val, expiration)
	return nil
}

func (l *LocalCache) Get(ctx context.Context, key string) (any, error) {
	val, ok := l.c.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w, key: %s", ErrKeyNotFound, key)
	}
	return val, nil
}

func (l *LocalCache) Delete(ctx context.Context, key string) error {
	l.c.Delete(key)
	return nil
}

// ItemCount 包括已经过期但是还没被清理掉的键
func (l *LocalCache) ItemCount() int {
	return l.c.ItemCount()
}
