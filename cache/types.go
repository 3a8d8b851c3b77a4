package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyNotFound 键不存在或者已经过期, 调用方不应该区分这两种情况
	ErrKeyNotFound = errors.New("cache: 键不存在")
)

//go:generate mockgen -destination=mocks/cache.go -package=mocks github.com/startdusk/go-orm/cache Cache

// 为什么不用泛型
// type Cache[T any] interface
// 由于Golang泛型的缺陷, 使用泛型只能用一种类型, 但缓存是会缓存多种类型, 使用any + 类型转换更合适
type Cache interface {
	Set(ctx context.Context, key string, val any, expiration time.Duration) error
	// Get 找不到的时候返回的错误包装了 ErrKeyNotFound
	Get(ctx context.Context, key string) (any, error)
	Delete(ctx context.Context, key string) error
}
