package orm

import (
	"context"
)

// Querier 用于 `SELECT` 语句, 以及带 RETURNING 的 `INSERT`, `UPDATE` 语句
type Querier[T any] interface {
	// 返回指针 是允许在 AOP 的场景下修改返回值, 从而不引起数据拷贝
	Get(ctx context.Context) (*T, error)
	GetMulti(ctx context.Context) ([]*T, error)
}

// Executor 用于 `INSERT`, `UPDATE`, `DELETE` 语句
type Executor interface {
	Exec(ctx context.Context) Result
}

type QueryBuilder interface {
	Build() (*Query, error)
}

type Query struct {
	SQL  string
	Args []any
}
