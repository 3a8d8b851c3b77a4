package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

var _ Cache = new(LRUCache)

// LRUCache 控制住缓存住的键值对数量, 超过容量之后淘汰最久没用过的键
type LRUCache struct {
	c *lru.Cache[string, item]
}

type item struct {
	val      any
	deadline time.Time // 过期的时间点
}

func NewLRUCache(size int, onEvicted func(key string, val any)) (*LRUCache, error) {
	var c *lru.Cache[string, item]
	var err error
	if onEvicted == nil {
		c, err = lru.New[string, item](size)
	} else {
		c, err = lru.NewWithEvict[string, item](size, func(key string, value item) {
			onEvicted(key, value.val)
		})
	}
	if err != nil {
		return nil, err
	}
	return &LRUCache{c: c}, nil
}

func (l *LRUCache) Set(ctx context.Context, key string, val any, expiration time.Duration) error {
	var dl time.Time
	if expiration > 0 {
		dl = time.Now().Add(expiration)
	}
	l.c.Add(key, item{val: val, deadline: dl})
	return nil
}

func (l *LRUCache) Get(ctx context.Context, key string) (any, error) {
	itm, ok := l.c.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w, key: %s", ErrKeyNotFound, key)
	}
	// 没有后台轮询, 读的时候检查是否过期
	if !itm.deadline.IsZero() && itm.deadline.Before(time.Now()) {
		l.c.Remove(key)
		return nil, fmt.Errorf("%w, key: %s", ErrKeyNotFound, key)
	}
	return itm.val, nil
}

func (l *LRUCache) Delete(ctx context.Context, key string) error {
	l.c.Remove(key)
	return nil
}

func (l *LRUCache) Len() int {
	return l.c.Len()
}
