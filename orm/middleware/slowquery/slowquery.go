package slowquery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/startdusk/go-orm/orm"
)

type MiddlewareBuilder struct {
	// 慢查询阈值, 设置需要考虑公司实际情况, 如100ms
	threshold time.Duration

	logger *zap.Logger
	// logFunc 不为 nil 的时候代替 logger
	// SQL参数可能存在敏感数据, 所以只给 SQL 和耗时
	logFunc func(query string, duration time.Duration)
}

func NewMiddlewareBuilder(threshold time.Duration) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		threshold: threshold,
		logger:    zap.L(),
	}
}

func (m *MiddlewareBuilder) Logger(logger *zap.Logger) *MiddlewareBuilder {
	m.logger = logger
	return m
}

func (m *MiddlewareBuilder) LogFunc(fn func(query string, duration time.Duration)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			startTime := time.Now()
			defer func() {
				duration := time.Since(startTime)
				// 不是慢查询
				if duration <= m.threshold {
					return
				}

				// 是慢查询, 记录一下, 不处理错误(如果错误了, 证明SQL都没构造出来)
				q, err := qc.Builder.Build()
				if err != nil {
					return
				}
				if m.logFunc != nil {
					m.logFunc(q.SQL, duration)
					return
				}
				m.logger.Warn("orm: slow query",
					zap.String("type", qc.Type),
					zap.String("sql", q.SQL),
					zap.Duration("duration", duration))
			}()

			return next(ctx, qc)
		}
	}
}
