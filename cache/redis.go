package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var (
	errFailedToSetCache = errors.New("cache: 写入 redis 失败")
)

var _ Cache = new(RedisCache)

type RedisCache struct {
	// 用 Cmdable 而不是 *redis.Client, 单机, 集群, 哨兵都可以用
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

func (r *RedisCache) Set(ctx context.Context, key string, val any, expiration time.Duration) error {
	res, err := r.client.Set(ctx, key, val, expiration).Result()
	if err != nil {
		return err
	}
	if res != "OK" {
		return fmt.Errorf("%w, 返回信息 %s", errFailedToSetCache, res)
	}
	return nil
}

// Get redis 返回的都是字符串, 调用方自己转换
func (r *RedisCache) Get(ctx context.Context, key string) (any, error) {
	res, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w, key: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	_, err := r.client.Del(ctx, key).Result()
	return err
}
