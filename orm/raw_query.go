package orm

import (
	"context"
)

// RawQuerier 执行用户手写的 SQL, 占位符由用户按方言来写
type RawQuerier[T any] struct {
	core
	sess Session
	sql  string
	args []any
}

func RawQuery[T any](sess Session, query string, args ...any) *RawQuerier[T] {
	return &RawQuerier[T]{
		sql:  query,
		args: args,
		sess: sess,
		core: sess.getCore(),
	}
}

func (r *RawQuerier[T]) Build() (*Query, error) {
	return &Query{
		SQL:  r.sql,
		Args: r.args,
	}, nil
}

func (r *RawQuerier[T]) Get(ctx context.Context) (*T, error) {
	var err error
	r.model, err = r.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	res := get[T](ctx, r.sess, r.core, &QueryContext{
		Type:    TypeRaw,
		Builder: r,
		Model:   r.model,
	})
	return toEntity[T](res)
}

func (r *RawQuerier[T]) GetMulti(ctx context.Context) ([]*T, error) {
	var err error
	r.model, err = r.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	res := getMulti[T](ctx, r.sess, r.core, &QueryContext{
		Type:    TypeRaw,
		Builder: r,
		Model:   r.model,
	})
	return toEntities[T](res)
}

// Exec 执行语句, 可以是包含多条语句的脚本(取决于驱动是否支持)
// T 不是模型的时候, 比如 RawQuery[any], QueryContext.Model 是 nil
func (r *RawQuerier[T]) Exec(ctx context.Context) Result {
	if m, err := r.r.Get(new(T)); err == nil {
		r.model = m
	}
	res := exec(ctx, r.sess, r.core, &QueryContext{
		Type:    TypeRaw,
		Builder: r,
		Model:   r.model,
	})
	return toResult(res)
}
