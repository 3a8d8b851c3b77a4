package nodelete

import (
	"context"
	"errors"
	"strings"

	"github.com/startdusk/go-orm/orm"
)

var ErrDeleteForbidden = errors.New("orm: 禁止使用 DELETE 语句")

// MiddlewareBuilder 禁用 DELETE 语句, 包括手写的 DELETE
type MiddlewareBuilder struct {
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{}
}

func (m MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			if qc.Type == orm.TypeDelete {
				return &orm.QueryResult{Err: ErrDeleteForbidden}
			}
			if qc.Type == orm.TypeRaw {
				q, err := qc.Builder.Build()
				if err != nil {
					return &orm.QueryResult{Err: err}
				}
				sql := strings.ToUpper(strings.TrimSpace(q.SQL))
				if strings.HasPrefix(sql, "DELETE") {
					return &orm.QueryResult{Err: ErrDeleteForbidden}
				}
			}
			return next(ctx, qc)
		}
	}
}
