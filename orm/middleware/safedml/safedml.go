package safedml

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/startdusk/go-orm/orm"
)

var ErrUnsafeDML = errors.New("orm: 禁止执行没有 WHERE 的语句")

// MiddlewareBuilder 强制 UPDATE 和 DELETE 必须带 WHERE
// SELECT 要不要带 WHERE 由用户自己抉择, 这里不管
type MiddlewareBuilder struct {
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{}
}

func (m MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			if qc.Type != orm.TypeUpdate && qc.Type != orm.TypeDelete {
				return next(ctx, qc)
			}
			q, err := qc.Builder.Build()
			if err != nil {
				return &orm.QueryResult{
					Err: err,
				}
			}
			if !strings.Contains(q.SQL, " WHERE ") {
				return &orm.QueryResult{
					Err: fmt.Errorf("%w: %s", ErrUnsafeDML, qc.Type),
				}
			}
			return next(ctx, qc)
		}
	}
}
