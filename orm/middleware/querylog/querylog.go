package querylog

import (
	"context"

	"go.uber.org/zap"

	"github.com/startdusk/go-orm/orm"
)

type MiddlewareBuilder struct {
	// SQL参数可能存在敏感数据, 默认不打印参数
	logArgs bool
	logger  *zap.Logger
	// logFunc 不为 nil 的时候代替 logger
	logFunc func(query string, args []any)
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logger: zap.L(),
	}
}

func (m *MiddlewareBuilder) Logger(logger *zap.Logger) *MiddlewareBuilder {
	m.logger = logger
	return m
}

func (m *MiddlewareBuilder) LogFunc(fn func(query string, args []any)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

// LogArgs 打印参数, 只建议在开发环境打开
func (m *MiddlewareBuilder) LogArgs(logArgs bool) *MiddlewareBuilder {
	m.logArgs = logArgs
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			q, err := qc.Builder.Build()
			if err != nil {
				return &orm.QueryResult{
					Err: err,
				}
			}
			m.log(qc.Type, q)
			return next(ctx, qc)
		}
	}
}

func (m *MiddlewareBuilder) log(typ string, q *orm.Query) {
	var args []any
	if m.logArgs {
		args = q.Args
	}
	if m.logFunc != nil {
		m.logFunc(q.SQL, args)
		return
	}
	fields := []zap.Field{zap.String("type", typ), zap.String("sql", q.SQL)}
	if m.logArgs {
		fields = append(fields, zap.Any("args", args))
	}
	m.logger.Info("orm: query", fields...)
}
