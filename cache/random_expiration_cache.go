package cache

import (
	"context"
	"math/rand"
	"time"
)

var _ Cache = new(RandomExpirationCache)

// 缓存雪崩解决方案
// 缓存雪崩: 同一个时刻，大量key过期，查询都要打到数据库
// 解决方案: 在设置key过期时间的时候，加上一个随机的偏移量，保证不在同一个时刻过期
type RandomExpirationCache struct {
	Cache
	// MaxOffset 偏移量的上限, 偏移量在 [0, MaxOffset) 之间
	MaxOffset time.Duration
}

func (r *RandomExpirationCache) Set(ctx context.Context, key string, val any, expiration time.Duration) error {
	if expiration > 0 && r.MaxOffset > 0 {
		expiration += time.Duration(rand.Int63n(int64(r.MaxOffset)))
	}
	return r.Cache.Set(ctx, key, val, expiration)
}
