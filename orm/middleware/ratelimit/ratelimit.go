package ratelimit

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/startdusk/go-orm/orm"
)

var ErrRateLimited = errors.New("orm: 触发限流")

// MiddlewareBuilder 限制发往数据库的语句速率, 令牌桶算法
type MiddlewareBuilder struct {
	limiter *rate.Limiter
	// nonBlocking 为 true 的时候拿不到令牌直接返回 ErrRateLimited, 否则等待
	nonBlocking bool
}

// NewMiddlewareBuilder limit 是每秒的语句数, burst 是允许的突发数量
func NewMiddlewareBuilder(limit rate.Limit, burst int) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (m *MiddlewareBuilder) NonBlocking() *MiddlewareBuilder {
	m.nonBlocking = true
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			if m.nonBlocking {
				if !m.limiter.Allow() {
					return &orm.QueryResult{Err: ErrRateLimited}
				}
				return next(ctx, qc)
			}
			// 等待令牌, ctx 超时或者取消就直接返回
			if err := m.limiter.Wait(ctx); err != nil {
				return &orm.QueryResult{Err: errors.Join(ErrRateLimited, err)}
			}
			return next(ctx, qc)
		}
	}
}
