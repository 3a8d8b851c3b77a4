package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrFailedToRefreshCache = errors.New("刷新缓存失败")
)

// 缓存模式 read-through 模式
// 缓存中读不到数据就去数据库拿, 拿到后设置到缓存里面
// 同一个 key 同时只会有一个请求回源, 能缓解缓存击穿问题
// 但如果是黑客伪造不存在的key, 就没办法了

// ReadThroughCache 使用 Get 的时候一定要赋值 LoadFunc
// Expiration 是你的过期时间
type ReadThroughCache struct {
	Cache
	LoadFunc   func(ctx context.Context, key string) (any, error)
	Expiration time.Duration

	g singleflight.Group
}

func (r *ReadThroughCache) Get(ctx context.Context, key string) (any, error) {
	return r.GetWith(ctx, key, func(ctx context.Context) (any, error) {
		return r.LoadFunc(ctx, key)
	})
}

// GetWith 和 Get 一样, 只是每次调用的时候指定回源的方法
// 缓存本身出错的时候也当作没有命中, 直接回源
// 回源成功但是写缓存失败, 会同时返回数据和 ErrFailedToRefreshCache
func (r *ReadThroughCache) GetWith(ctx context.Context, key string, load func(ctx context.Context) (any, error)) (any, error) {
	val, err := r.Cache.Get(ctx, key)
	if err == nil {
		return val, nil
	}
	val, err, _ = r.g.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.Cache.Set(ctx, key, v, r.Expiration); err != nil {
			return v, fmt.Errorf("%w, 原因: %w", ErrFailedToRefreshCache, err)
		}
		return v, nil
	})
	return val, err
}
